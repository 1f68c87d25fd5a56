package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	_ "github.com/odyssey-erp/odyssey-books/testing"
)

type alertRule struct {
	Alert       string            `yaml:"alert"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for"`
	Labels      map[string]string `yaml:"labels"`
	Annotations map[string]string `yaml:"annotations"`
}

type alertGroup struct {
	Name  string      `yaml:"name"`
	Rules []alertRule `yaml:"rules"`
}

type alertFile struct {
	Groups []alertGroup `yaml:"groups"`
}

func TestBooksAlertRules(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "deploy", "prometheus", "alerts", "books.yml"))
	require.NoError(t, err)

	var doc alertFile
	require.NoError(t, yaml.Unmarshal(data, &doc))
	require.Len(t, doc.Groups, 1)
	require.Equal(t, "books", doc.Groups[0].Name)

	expected := map[string]struct {
		severity string
		metric   string
	}{
		"HighErrorRate":        {severity: "critical", metric: "books_http_requests_total"},
		"LedgerOutOfBalance":   {severity: "critical", metric: "books_ledger_imbalance"},
		"InventoryLedgerDrift": {severity: "warning", metric: "books_inventory_ledger_difference"},
		"JobFailures":          {severity: "warning", metric: "books_jobs_failures_total"},
	}
	rules := doc.Groups[0].Rules
	require.Len(t, rules, len(expected))
	for _, rule := range rules {
		want, ok := expected[rule.Alert]
		require.True(t, ok, "unexpected rule %q", rule.Alert)
		require.Equal(t, want.severity, rule.Labels["severity"], rule.Alert)
		require.True(t, strings.Contains(rule.Expr, want.metric), rule.Alert)
		require.NotEmpty(t, rule.For, rule.Alert)
		require.NotEmpty(t, rule.Annotations["summary"], rule.Alert)
		require.NotEmpty(t, rule.Annotations["description"], rule.Alert)
	}
}
