// Package catalog holds the static skill and network catalogues the rest
// of the gateway is built against.
package catalog

// Skill describes one unit of service the gateway exposes.
type Skill struct {
	ID                string
	PriceSmallestUnit int64
	InputModes        []string
	OutputModes       []string
}

// RequiresPayment reports whether this skill is priced.
func (s Skill) RequiresPayment() bool { return s.PriceSmallestUnit > 0 }

// Network describes one EVM-compatible chain the gateway accepts payment on.
type Network struct {
	Key          string
	CAIP2ID      string
	AssetAddress string
	Gasless      bool
}

const (
	SkillScreenshot     = "screenshot"
	SkillMarkdownToPDF  = "markdown-to-pdf"
	SkillMarkdownToHTML = "markdown-to-html"
	SkillAIAnalysis     = "ai-analysis"
)

// Skills is the fixed catalogue of skills the gateway can dispatch to.
var Skills = []Skill{
	{
		ID:                SkillScreenshot,
		PriceSmallestUnit: 5000,
		InputModes:        []string{"text/plain"},
		OutputModes:       []string{"image/png"},
	},
	{
		ID:                SkillMarkdownToPDF,
		PriceSmallestUnit: 2000,
		InputModes:        []string{"text/markdown"},
		OutputModes:       []string{"application/pdf"},
	},
	{
		ID:                SkillMarkdownToHTML,
		PriceSmallestUnit: 0,
		InputModes:        []string{"text/markdown"},
		OutputModes:       []string{"text/html"},
	},
	{
		ID:                SkillAIAnalysis,
		PriceSmallestUnit: 8000,
		InputModes:        []string{"text/plain"},
		OutputModes:       []string{"text/plain"},
	},
}

// Networks is the fixed catalogue of accepted settlement networks.
// AssetAddress values are the canonical USDC contracts for each chain.
var Networks = []Network{
	{
		Key:          "base",
		CAIP2ID:      "eip155:8453",
		AssetAddress: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		Gasless:      false,
	},
	{
		Key:          "base-sepolia",
		CAIP2ID:      "eip155:84532",
		AssetAddress: "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
		Gasless:      false,
	},
	{
		Key:          "polygon-gasless",
		CAIP2ID:      "eip155:137",
		AssetAddress: "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359",
		Gasless:      true,
	},
}

// Lookup returns the skill with the given id, or false if unknown.
func Lookup(id string) (Skill, bool) {
	for _, s := range Skills {
		if s.ID == id {
			return s, true
		}
	}
	return Skill{}, false
}

// NetworkByCAIP2 returns the network with the given CAIP-2 id, or false if
// it is not one of the enabled networks.
func NetworkByCAIP2(caip2 string) (Network, bool) {
	for _, n := range Networks {
		if n.CAIP2ID == caip2 {
			return n, true
		}
	}
	return Network{}, false
}
