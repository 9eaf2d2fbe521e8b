package agents

import "strings"

// exclusionGroups maps a named restriction to the concrete foods it rules
// out. Exclusion is semantic, not substring-based: "dairy-free" must exclude
// milk, cheese, yogurt and butter even though none contain "dairy".
var exclusionGroups = map[string][]string{
	"dairy":      {"milk", "cheese", "yogurt", "butter", "cream", "whey"},
	"gluten":     {"wheat", "bread", "pasta", "barley", "rye", "couscous", "flour tortilla"},
	"meat":       {"beef", "pork", "chicken", "turkey", "lamb", "bacon", "ham", "steak"},
	"red meat":   {"beef", "pork", "lamb", "bacon", "ham", "steak"},
	"fish":       {"salmon", "tuna", "cod", "trout", "sardines", "anchovies"},
	"shellfish":  {"shrimp", "crab", "lobster", "mussels", "oysters", "clams"},
	"eggs":       {"egg", "eggs", "omelette", "mayonnaise"},
	"nuts":       {"almonds", "walnuts", "peanuts", "cashews", "pistachios", "peanut butter", "almond butter"},
	"soy":        {"tofu", "edamame", "soy sauce", "tempeh", "soy milk"},
	"pork":       {"pork", "bacon", "ham", "sausage"},
	"vegetarian": {"beef", "pork", "chicken", "turkey", "lamb", "bacon", "ham", "steak", "salmon", "tuna", "cod", "shrimp", "crab"},
	"vegan": {"beef", "pork", "chicken", "turkey", "lamb", "bacon", "ham", "steak",
		"salmon", "tuna", "cod", "shrimp", "crab",
		"milk", "cheese", "yogurt", "butter", "cream", "whey",
		"egg", "eggs", "honey"},
}

// aliases normalize common phrasings onto group names.
var exclusionAliases = map[string]string{
	"dairy-free":    "dairy",
	"dairy free":    "dairy",
	"lactose":       "dairy",
	"gluten-free":   "gluten",
	"gluten free":   "gluten",
	"no meat":       "meat",
	"nut allergy":   "nuts",
	"tree nuts":     "nuts",
	"no pork":       "pork",
	"pescatarian":   "meat",
	"plant-based":   "vegan",
	"plant based":   "vegan",
	"no red meat":   "red meat",
	"no shellfish":  "shellfish",
	"egg allergy":   "eggs",
	"soy allergy":   "soy",
	"no fish":       "fish",
	"vegetarianism": "vegetarian",
}

// ExpandExclusions turns free-text dislikes/restrictions into the full set of
// foods to rule out: each literal item plus everything its restriction group
// implies. All entries are lowercase.
func ExpandExclusions(items []string) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(item string) {
		item = strings.ToLower(strings.TrimSpace(item))
		if item == "" {
			return
		}
		if _, ok := seen[item]; ok {
			return
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}

	for _, raw := range items {
		key := strings.ToLower(strings.TrimSpace(raw))
		if canonical, ok := exclusionAliases[key]; ok {
			key = canonical
		}
		add(key)
		for _, food := range exclusionGroups[key] {
			add(food)
		}
	}
	return out
}

// violatesExclusions returns the first excluded term found among the foods,
// or "" when the list is clean. Matching is case-insensitive on whole terms
// and on word boundaries ("grilled chicken" matches "chicken").
func violatesExclusions(foods []string, exclusions []string) string {
	for _, food := range foods {
		f := strings.ToLower(food)
		for _, excl := range exclusions {
			if f == excl || containsWord(f, excl) {
				return excl
			}
		}
	}
	return ""
}

func containsWord(s, word string) bool {
	idx := strings.Index(s, word)
	for idx >= 0 {
		beforeOK := idx == 0 || !isLetter(s[idx-1])
		after := idx + len(word)
		afterOK := after == len(s) || !isLetter(s[after])
		if beforeOK && afterOK {
			return true
		}
		next := strings.Index(s[idx+1:], word)
		if next < 0 {
			return false
		}
		idx += 1 + next
	}
	return false
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
