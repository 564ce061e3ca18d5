// Package texts holds the long-form copy the bot sends. Keeping it in one
// place makes wording changes reviewable without touching handler logic.
package texts

const Disclaimer = `⚠️ Disclaimer

This bot provides market structure analysis for educational purposes only.
Nothing here is financial advice, a trade signal, or a recommendation to buy
or sell any asset. Markets are risky and you can lose your entire deposit.

By pressing "I agree" you confirm that:
• you make all trading decisions yourself and at your own risk;
• the bot's authors carry no responsibility for your results;
• you will not treat any chart, regime label or ranking as a call to action.`

const DecisionBrief = `🧭 Decision brief

Before entering a position, answer honestly:
1. What is the current regime — trend, range, or weakness?
2. Where exactly is your invalidation level?
3. What share of the deposit is at risk if you are wrong?
4. Is this entry part of your plan, or a reaction to the chart?

If any answer is missing, the trade is not ready.`

const Promo = `🔓 Full access — 30 days

What you get:
• regime charts with MA(30) overlay on four timeframes;
• top gainers and losers across the USDT spot market;
• favorites, a trading journal and priority support;
• an invite to the private channel.

Payment is processed with Telegram Stars. Access activates instantly.`

const Tilt = `🧊 Tilt protocol

Feeling the urge to win it back? Stop.
1. Close the terminal for at least one hour.
2. Write down what happened in the journal — facts, not feelings.
3. Halve your position size for the next three trades.
4. Come back only with a written plan.

A missed trade costs nothing. A tilted trade costs the deposit.`

const ChecklistPre = `📋 Pre-trade checklist

• Regime identified and matches the trade direction.
• Entry, invalidation and target written down before the order.
• Risk per trade within your fixed limit.
• No open news risk for the asset in the next hours.
• You would take this exact trade again tomorrow.`

const ChecklistPost = `📋 Post-trade checklist

• Result recorded in the journal, win or lose.
• Plan followed? If not — what exactly deviated?
• Invalidation respected, not moved mid-trade.
• One lesson extracted, one sentence long.
• Screenshot saved if the setup is worth re-studying.`
