package gather

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// defaultPreferredDomains is the curated allow-list of sources trusted to
// return higher-quality structured price data.
var defaultPreferredDomains = []string{
	"indexmundi.com",
	"tridge.com",
	"selinawamucii.com",
	"fas.usda.gov",
	"mintecglobal.com",
	"imarcgroup.com",
	"statista.com",
	"ycharts.com",
}

// DefaultPreferredDomains returns a copy of the built-in allow-list.
func DefaultPreferredDomains() []string {
	out := make([]string, len(defaultPreferredDomains))
	copy(out, defaultPreferredDomains)
	return out
}

type domainsFile struct {
	PreferredDomains []string `yaml:"preferred_domains"`
}

// LoadPreferredDomains reads an allow-list override from a YAML file of the
// form `preferred_domains: [...]`. An empty list in the file is rejected.
func LoadPreferredDomains(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "gather: read domains file %s", path)
	}

	var f domainsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, eris.Wrapf(err, "gather: parse domains file %s", path)
	}
	if len(f.PreferredDomains) == 0 {
		return nil, eris.Errorf("gather: domains file %s lists no preferred domains", path)
	}

	return f.PreferredDomains, nil
}
