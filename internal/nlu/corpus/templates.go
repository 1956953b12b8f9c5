package corpus

import "defi-nlu/internal/nlu/intent"

// Placeholders substituted by the generator.
const (
	amountSlot  = "{amount}"
	addressSlot = "{address}"
)

var amounts = []string{"0.5", "1", "2", "2.5", "5", "10", "25", "50", "100"}

var addresses = []string{
	"GZXs9Dy4GzPD3PYZ2pz6ggPYPjDYKE3fFMDVZ8ZdEJ3m",
	"9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM",
	"4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T",
	"0x52908400098527886E0F7030069857D2E4169EE7",
}

var templates = map[intent.Intent][]string{
	intent.StakeNative: {
		"stake {amount} sol",
		"stake {amount} SOL",
		"i want to stake {amount} sol",
		"stake {amount} sol natively",
		"delegate {amount} sol to a validator",
		"native stake {amount} sol",
		"can you stake {amount} sol for me",
		"put {amount} sol into native staking",
		"stake my sol",
		"i want to stake sol",
		"stak {amount} sol",
		"stake sol natively",
		"please stake {amount} sol",
		"stake {amount} sol now",
		"stake {amount} sol please",
		"just stake {amount} sol",
	},
	intent.StakeMSOL: {
		"stake {amount} sol to msol",
		"stake {amount} to msol",
		"i want to stake {amount} sol to msol",
		"liquid stake {amount} sol to msol",
		"stake sol to msol",
		"stake to msol",
		"stake my sol to msol",
		"please stake {amount} sol to msol",
		"stake {amount} sol to msol now",
		"can you stake {amount} sol to msol",
		"stake {amount} sol to msol with marinade",
		"stake {amount} sol as msol",
		"stake {amount} sol into msol",
		"stake {amount} sol with marinade",
		"liquid stake with marinade",
		"get msol for {amount} sol",
		"convert {amount} sol to msol",
		"i want msol",
		"stak {amount} sol to msol",
		"mint msol with {amount} sol",
	},
	intent.StakeBSOL: {
		"stake {amount} sol to bsol",
		"stake {amount} to bsol",
		"i want to stake {amount} sol to bsol",
		"liquid stake {amount} sol to bsol",
		"stake sol to bsol",
		"stake to bsol",
		"stake my sol to bsol",
		"please stake {amount} sol to bsol",
		"stake {amount} sol to bsol now",
		"can you stake {amount} sol to bsol",
		"stake {amount} sol to bsol with blazestake",
		"stake {amount} sol as bsol",
		"stake {amount} sol into bsol",
		"stake {amount} sol with blazestake",
		"liquid stake with blazestake",
		"get bsol for {amount} sol",
		"convert {amount} sol to bsol",
		"i want bsol",
		"stak {amount} sol to bsol",
		"mint bsol with {amount} sol",
	},
	intent.UnstakeNative: {
		"unstake {amount} sol",
		"unstake my sol",
		"unstake sol",
		"deactivate my stake",
		"withdraw my staked sol",
		"undelegate {amount} sol",
		"unstake my native stake",
		"stop staking my sol",
		"deactivate {amount} sol stake",
		"unstak my sol",
	},
	intent.UnstakeMSOL: {
		"unstake {amount} msol",
		"unstake msol",
		"convert {amount} msol to sol",
		"swap {amount} msol back to sol",
		"redeem {amount} msol",
		"unstake my msol from marinade",
		"withdraw {amount} msol",
		"unstake {amount} msol to sol",
		"unstak {amount} msol",
		"cash out my msol",
	},
	intent.UnstakeBSOL: {
		"unstake {amount} bsol",
		"unstake bsol",
		"convert {amount} bsol to sol",
		"swap {amount} bsol back to sol",
		"redeem {amount} bsol",
		"unstake my bsol from blaze",
		"withdraw {amount} bsol",
		"unstake {amount} bsol to sol",
		"unstak {amount} bsol",
		"cash out my bsol",
	},
	intent.Send: {
		"send {amount} sol to {address}",
		"transfer {amount} sol to {address}",
		"send {amount} SOL to {address}",
		"pay {address} {amount} sol",
		"send {amount} sol",
		"transfer {amount} sol",
		"send sol to {address}",
		"send some sol to my friend",
		"transfer sol to {address}",
		"i want to send {amount} sol to {address}",
		"move {amount} sol to {address}",
		"snd {amount} sol to {address}",
	},
	intent.Explain: {
		"what is staking",
		"explain liquid staking",
		"how does staking work",
		"what is msol",
		"what is bsol",
		"explain how marinade works",
		"what is the difference between msol and bsol",
		"how do staking rewards work",
		"what is a validator",
		"tell me about liquid staking tokens",
		"why should i stake",
		"explain defi to me",
	},
	intent.Balance: {
		"what's my balance",
		"whats my balance",
		"show my balance",
		"check my balance",
		"how much sol do i have",
		"what is my wallet balance",
		"show my sol balance",
		"balance",
		"how many tokens do i hold",
		"show me my account balance",
		"my balance please",
		"check wallet balance",
	},
	intent.Price: {
		"what is the price of sol",
		"sol price",
		"how much is sol worth",
		"price of msol",
		"current bsol price",
		"what's the sol price today",
		"show me the price of solana",
		"how much does one sol cost",
		"price check sol",
		"what is msol trading at",
	},
	intent.MarketData: {
		"show market data",
		"what is the market cap of solana",
		"show me the trading volume",
		"market overview",
		"how is the market doing",
		"show staking apy for msol and bsol",
		"what are the current staking yields",
		"compare apy rates",
		"show tvl for marinade",
		"market trends today",
		"24h volume for sol",
		"show market stats",
	},
	intent.PortfolioAnalysis: {
		"analyze my portfolio",
		"show my portfolio",
		"how is my portfolio performing",
		"portfolio breakdown",
		"give me a portfolio analysis",
		"what does my portfolio look like",
		"analyze my holdings",
		"show my staking positions",
		"how are my investments doing",
		"review my portfolio",
	},
	intent.PortfolioRecommendation: {
		"recommend a portfolio",
		"what should i invest in",
		"give me a low risk strategy",
		"suggest a high risk strategy",
		"recommend a medium risk allocation for 6 months",
		"how should i allocate my sol",
		"what is the best staking strategy for 1 year",
		"suggest how to rebalance my portfolio",
		"recommend where to stake for 3 months",
		"give me investment advice",
		"optimize my portfolio",
		"what strategy do you recommend",
	},
}
