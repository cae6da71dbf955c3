package zoning

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/docgraph/internal/core/domain"
)

//go:embed rules.yaml
var rulesYAML []byte

type zoneRules struct {
	Topics   []domain.ZoneRole `yaml:"topics"`
	Entities []domain.ZoneRole `yaml:"entities"`
	Metadata []domain.ZoneRole `yaml:"metadata"`
}

var ruleTable map[domain.DocumentType]zoneRules

func init() {
	table, err := parseRuleTable(rulesYAML)
	if err != nil {
		panic(fmt.Sprintf("zoning: invalid embedded rule table: %v", err))
	}
	ruleTable = table
}

func parseRuleTable(raw []byte) (map[domain.DocumentType]zoneRules, error) {
	var table map[domain.DocumentType]zoneRules
	if err := yaml.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("parse rule table: %w", err)
	}
	for _, required := range []domain.DocumentType{
		domain.TypeScientificPaper,
		domain.TypeNewsArticle,
		domain.TypeBlogPost,
		domain.TypeDatasetReadme,
		domain.TypeGeneric,
	} {
		if _, ok := table[required]; !ok {
			return nil, fmt.Errorf("rule table missing document type %q", required)
		}
	}
	return table, nil
}

// rulesFor returns the static rule row for a type, falling back to generic.
func rulesFor(docType domain.DocumentType) zoneRules {
	if rules, ok := ruleTable[docType]; ok {
		return rules
	}
	return ruleTable[domain.TypeGeneric]
}
