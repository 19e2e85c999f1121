package followups

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"leadnest/internal/leads/domain"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

const (
	RuleRemindUncontacted = "remind_uncontacted"
	RuleNudgeQuoted       = "nudge_quoted"
	RuleFlagStale         = "flag_stale"

	// NamePlaceholder in a rule message is replaced with the lead's name.
	NamePlaceholder = "{name}"
)

// Rule selects leads in Status that have been idle for AfterHours.
type Rule struct {
	Enabled    bool   `yaml:"enabled"`
	Status     string `yaml:"status"`
	AfterHours int    `yaml:"after_hours"`
	Title      string `yaml:"title"`
	Message    string `yaml:"message"`
}

// After returns the idle duration of the rule.
func (r Rule) After() time.Duration {
	return time.Duration(r.AfterHours) * time.Hour
}

// Render fills the rule message for one lead. The message is plain text, so
// any other braces or percent signs pass through unchanged.
func (r Rule) Render(leadName string) string {
	return strings.ReplaceAll(r.Message, NamePlaceholder, leadName)
}

type Rules struct {
	RemindUncontacted Rule `yaml:"remind_uncontacted"`
	NudgeQuoted       Rule `yaml:"nudge_quoted"`
	FlagStale         Rule `yaml:"flag_stale"`
}

// LoadRules reads the rules file at path, or the embedded defaults when path
// is empty.
func LoadRules(path string) (Rules, error) {
	data := defaultRules
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Rules{}, fmt.Errorf("read follow-up rules: %w", err)
		}
		data = raw
	}
	return ParseRules(data)
}

// ParseRules decodes and validates a rules document. Disabled rules are not
// validated.
func ParseRules(data []byte) (Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("parse follow-up rules: %w", err)
	}

	for name, rule := range map[string]Rule{
		RuleRemindUncontacted: rules.RemindUncontacted,
		RuleNudgeQuoted:       rules.NudgeQuoted,
		RuleFlagStale:         rules.FlagStale,
	} {
		if !rule.Enabled {
			continue
		}
		if rule.Status == "" {
			return Rules{}, fmt.Errorf("follow-up rule %s: status is required", name)
		}
		if !domain.IsValidStatus(rule.Status) {
			return Rules{}, fmt.Errorf("follow-up rule %s: status %q is not one of %v", name, rule.Status, domain.AllStatuses())
		}
		if rule.AfterHours <= 0 {
			return Rules{}, fmt.Errorf("follow-up rule %s: after_hours must be positive", name)
		}
		if rule.Title == "" {
			return Rules{}, fmt.Errorf("follow-up rule %s: title is required", name)
		}
	}
	return rules, nil
}
