package question

import "math/rand"

// Bank is the compiled-in last-resort question set. It never fails and never
// touches the network, which bounds the pipeline's total failure surface.
type Bank struct {
	byCategory map[string][]Question
	size       int
}

// NewBank partitions the pre-authored set by category.
func NewBank() *Bank {
	byCategory := make(map[string][]Question, len(Categories))
	for _, q := range staticQuestions {
		byCategory[q.Category] = append(byCategory[q.Category], q)
	}
	return &Bank{byCategory: byCategory, size: len(staticQuestions)}
}

// Size returns the number of pre-authored questions.
func (b *Bank) Size() int { return b.size }

// Select returns up to count questions with an even share per category,
// remainder going to the earliest categories in enumeration order. If a
// category's pool runs dry the slack is topped up from the rest of the bank,
// so a request only comes up short when it exceeds the whole bank.
func (b *Bank) Select(count int) []Question {
	if count <= 0 {
		return nil
	}
	perCategory := count / len(Categories)
	remainder := count % len(Categories)

	selected := make([]Question, 0, count)
	taken := make(map[string]struct{}, count)

	for i, category := range Categories {
		want := perCategory
		if i < remainder {
			want++
		}
		pool := shuffled(b.byCategory[category])
		for _, q := range pool {
			if want == 0 {
				break
			}
			selected = append(selected, q)
			taken[q.ID] = struct{}{}
			want--
		}
	}

	// Top up from whatever is left when some category was exhausted.
	if len(selected) < count {
		var rest []Question
		for _, pool := range b.byCategory {
			for _, q := range pool {
				if _, ok := taken[q.ID]; !ok {
					rest = append(rest, q)
				}
			}
		}
		for _, q := range shuffled(rest) {
			if len(selected) == count {
				break
			}
			selected = append(selected, q)
		}
	}

	// Final shuffle mixes the categories together.
	return shuffled(selected)
}

// shuffled returns a uniformly shuffled copy. Ordering carries no security
// meaning, so math/rand is fine.
func shuffled(qs []Question) []Question {
	out := make([]Question, len(qs))
	copy(out, qs)
	rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// EntryYear maps a quiz score to the year the player plausibly "entered
// crypto". Higher scores map to earlier years.
func EntryYear(score, totalQuestions int) int {
	if totalQuestions <= 0 {
		return 2023
	}
	pct := float64(score) / float64(totalQuestions) * 100
	switch {
	case pct >= 90:
		return 2013
	case pct >= 80:
		return 2015
	case pct >= 70:
		return 2017
	case pct >= 60:
		return 2019
	case pct >= 50:
		return 2020
	case pct >= 40:
		return 2021
	case pct >= 30:
		return 2022
	default:
		return 2023
	}
}

var staticQuestions = []Question{
	{
		ID:            "dev-1",
		Category:      CategoryDevelopment,
		Question:      "Which consensus mechanism does Ethereum use after 'The Merge'?",
		Options:       []string{"Proof of Work", "Proof of Stake", "Proof of Authority", "Proof of Space"},
		CorrectAnswer: 1,
		YearIndicator: 2022,
	},
	{
		ID:            "dev-2",
		Category:      CategoryDevelopment,
		Question:      "What programming language is primarily used for Ethereum smart contracts?",
		Options:       []string{"JavaScript", "Python", "Solidity", "Rust"},
		CorrectAnswer: 2,
		YearIndicator: 2017,
	},
	{
		ID:            "dev-3",
		Category:      CategoryDevelopment,
		Question:      "What is ERC-721?",
		Options:       []string{"A fungible token standard", "A non-fungible token standard", "A governance standard", "A staking standard"},
		CorrectAnswer: 1,
		YearIndicator: 2018,
	},
	{
		ID:            "dev-4",
		Category:      CategoryDevelopment,
		Question:      "What is a Layer 2 solution?",
		Options:       []string{"A new blockchain", "A scaling solution built on top of an existing blockchain", "A consensus mechanism", "A type of wallet"},
		CorrectAnswer: 1,
		YearIndicator: 2020,
	},
	{
		ID:            "dev-5",
		Category:      CategoryDevelopment,
		Question:      "What is the primary purpose of Farcaster?",
		Options:       []string{"A decentralized exchange", "A decentralized social protocol", "A layer 2 solution", "A stablecoin protocol"},
		CorrectAnswer: 1,
		YearIndicator: 2021,
	},
	{
		ID:            "meme-1",
		Category:      CategoryMemesNFTsTokens,
		Question:      "Which NFT collection features pixelated characters and became one of the first major NFT phenomena?",
		Options:       []string{"Bored Ape Yacht Club", "CryptoPunks", "Azuki", "Doodles"},
		CorrectAnswer: 1,
		YearIndicator: 2017,
	},
	{
		ID:            "meme-2",
		Category:      CategoryMemesNFTsTokens,
		Question:      "What does 'WAGMI' stand for in crypto culture?",
		Options:       []string{"We Are Getting Money Instantly", "We're All Gonna Make It", "When Art Generates Massive Income", "Wealth And Growth Metrics Index"},
		CorrectAnswer: 1,
		YearIndicator: 2021,
	},
	{
		ID:            "meme-3",
		Category:      CategoryMemesNFTsTokens,
		Question:      "What is 'Diamond Hands' referring to?",
		Options:       []string{"A type of NFT", "Holding assets despite volatility", "A crypto wallet", "A mining technique"},
		CorrectAnswer: 1,
		YearIndicator: 2020,
	},
	{
		ID:            "meme-4",
		Category:      CategoryMemesNFTsTokens,
		Question:      "Which meme coin was initially created as a joke but gained significant value?",
		Options:       []string{"Bitcoin", "Ethereum", "Dogecoin", "USD Coin"},
		CorrectAnswer: 2,
		YearIndicator: 2013,
	},
	{
		ID:            "meme-5",
		Category:      CategoryMemesNFTsTokens,
		Question:      "What does 'HODL' originally come from?",
		Options:       []string{"Hold On for Dear Life", "A misspelling of 'HOLD'", "High-Octane Decentralized Ledger", "Highly Optimized Digital Liquidity"},
		CorrectAnswer: 1,
		YearIndicator: 2013,
	},
	{
		ID:            "scam-1",
		Category:      CategoryScamsIncidents,
		Question:      "What is a 'rug pull' in crypto?",
		Options:       []string{"A hardware wallet malfunction", "Developers abandoning a project after taking investors' money", "A type of mining attack", "A market manipulation technique"},
		CorrectAnswer: 1,
		YearIndicator: 2020,
	},
	{
		ID:            "scam-2",
		Category:      CategoryScamsIncidents,
		Question:      "What was BitConnect primarily known for?",
		Options:       []string{"Being the first DEX", "A legitimate lending platform", "A Ponzi scheme", "A hardware wallet"},
		CorrectAnswer: 2,
		YearIndicator: 2018,
	},
	{
		ID:            "scam-3",
		Category:      CategoryScamsIncidents,
		Question:      "What is 'phishing' in the context of crypto?",
		Options:       []string{"Mining for small amounts of crypto", "Attempting to steal private keys through deception", "A consensus mechanism", "A type of airdrop"},
		CorrectAnswer: 1,
		YearIndicator: 2016,
	},
	{
		ID:            "scam-4",
		Category:      CategoryScamsIncidents,
		Question:      "What was 'The DAO' hack?",
		Options:       []string{"A social media account breach", "An exchange hack", "An exploit of a smart contract vulnerability", "A 51% attack"},
		CorrectAnswer: 2,
		YearIndicator: 2016,
	},
	{
		ID:            "scam-5",
		Category:      CategoryScamsIncidents,
		Question:      "Which exchange filed for bankruptcy in 2022 after misusing customer funds?",
		Options:       []string{"Binance", "Coinbase", "FTX", "Kraken"},
		CorrectAnswer: 2,
		YearIndicator: 2022,
	},
	{
		ID:            "char-1",
		Category:      CategoryCryptoCharacters,
		Question:      "Who is the pseudonymous creator of Bitcoin?",
		Options:       []string{"Vitalik Buterin", "Satoshi Nakamoto", "Charlie Lee", "Nick Szabo"},
		CorrectAnswer: 1,
		YearIndicator: 2009,
	},
	{
		ID:            "char-2",
		Category:      CategoryCryptoCharacters,
		Question:      "Who proposed Ethereum in a 2013 whitepaper?",
		Options:       []string{"Gavin Wood", "Vitalik Buterin", "Joseph Lubin", "Charles Hoskinson"},
		CorrectAnswer: 1,
		YearIndicator: 2013,
	},
	{
		ID:            "char-3",
		Category:      CategoryCryptoCharacters,
		Question:      "Which founder ran FTX before its collapse in 2022?",
		Options:       []string{"Changpeng Zhao", "Sam Bankman-Fried", "Do Kwon", "Brian Armstrong"},
		CorrectAnswer: 1,
		YearIndicator: 2022,
	},
	{
		ID:            "char-4",
		Category:      CategoryCryptoCharacters,
		Question:      "Whose tweets were widely credited with moving the Dogecoin price in 2021?",
		Options:       []string{"Jack Dorsey", "Elon Musk", "Mark Cuban", "Michael Saylor"},
		CorrectAnswer: 1,
		YearIndicator: 2021,
	},
	{
		ID:            "char-5",
		Category:      CategoryCryptoCharacters,
		Question:      "Who founded the Terra/Luna ecosystem that collapsed in 2022?",
		Options:       []string{"Do Kwon", "Justin Sun", "Arthur Hayes", "Su Zhu"},
		CorrectAnswer: 0,
		YearIndicator: 2022,
	},
}
