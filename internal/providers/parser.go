package providers

import "strings"

// ProviderRef is one entry of a "|"-separated provider list. An entry may pin a
// model: "deepseek:deepseek-reasoner".
type ProviderRef struct {
	Raw   string
	Name  string
	Model string
}

func ParseProviderList(raw string) []ProviderRef {
	parts := strings.Split(raw, "|")
	out := make([]ProviderRef, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		ref := ProviderRef{Raw: p}
		if strings.Contains(p, ":") {
			x := strings.SplitN(p, ":", 2)
			ref.Name = strings.ToLower(strings.TrimSpace(x[0]))
			ref.Model = strings.TrimSpace(x[1])
		} else {
			ref.Name = strings.ToLower(p)
		}
		out = append(out, ref)
	}
	return out
}
