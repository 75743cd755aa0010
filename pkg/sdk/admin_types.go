package sdk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID is a backend identifier. The API emits both numeric and string IDs.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	if string(data) == "null" {
		*id = ""
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string {
	return string(id)
}

// Site is a customer website served by the assistant.
type Site struct {
	ID         ID     `json:"id"`
	Name       string `json:"name"`
	Domain     string `json:"domain"`
	Plan       string `json:"plan"`
	Status     string `json:"status"`
	UsageToday int    `json:"usage_today"`
	DailyQuota int    `json:"daily_quota"`

	SetupCompleted bool `json:"setup_completed,omitempty"`
}

// Settings is the global AI and demo configuration.
type Settings struct {
	AIEnabled       bool    `json:"ai_enabled"`
	LearningEnabled bool    `json:"learning_enabled"`
	Temperature     float64 `json:"temperature"`
	MaxTokens       int     `json:"max_tokens"`
	SystemPrompt    string  `json:"system_prompt"`
	BlockedTopics   string  `json:"blocked_topics"`
	DemoDays        int     `json:"demo_days"`
	DemoDailyQuota  int     `json:"demo_daily_quota"`
}

// AISettings is the per-site override of the global AI configuration.
type AISettings struct {
	AIEnabled       bool    `json:"ai_enabled"`
	LearningEnabled bool    `json:"learning_enabled"`
	Temperature     float64 `json:"temperature"`
	MaxTokens       int     `json:"max_tokens"`
	SystemPrompt    string  `json:"system_prompt"`
	BlockedTopics   string  `json:"blocked_topics"`
}

// Site-level values used when the server has no override stored.
const (
	DefaultTemperature = 0.6
	DefaultMaxTokens   = 500
)

func (a *AISettings) UnmarshalJSON(data []byte) error {
	var raw struct {
		AIEnabled       *bool    `json:"ai_enabled"`
		LearningEnabled *bool    `json:"learning_enabled"`
		Temperature     *float64 `json:"temperature"`
		MaxTokens       *int     `json:"max_tokens"`
		SystemPrompt    *string  `json:"system_prompt"`
		BlockedTopics   *string  `json:"blocked_topics"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*a = AISettings{
		AIEnabled:       true,
		LearningEnabled: true,
		Temperature:     DefaultTemperature,
		MaxTokens:       DefaultMaxTokens,
	}
	if raw.AIEnabled != nil {
		a.AIEnabled = *raw.AIEnabled
	}
	if raw.LearningEnabled != nil {
		a.LearningEnabled = *raw.LearningEnabled
	}
	if raw.Temperature != nil {
		a.Temperature = *raw.Temperature
	}
	if raw.MaxTokens != nil {
		a.MaxTokens = *raw.MaxTokens
	}
	if raw.SystemPrompt != nil {
		a.SystemPrompt = *raw.SystemPrompt
	}
	if raw.BlockedTopics != nil {
		a.BlockedTopics = *raw.BlockedTopics
	}
	return nil
}

// SetField assigns one setting by its JSON name, parsing value to the field's type.
func (a *AISettings) SetField(key, value string) error {
	s := Settings{
		AIEnabled:       a.AIEnabled,
		LearningEnabled: a.LearningEnabled,
		Temperature:     a.Temperature,
		MaxTokens:       a.MaxTokens,
		SystemPrompt:    a.SystemPrompt,
		BlockedTopics:   a.BlockedTopics,
	}
	if key == "demo_days" || key == "demo_daily_quota" {
		return fmt.Errorf("%s is a global setting", key)
	}
	if err := s.SetField(key, value); err != nil {
		return err
	}
	a.AIEnabled = s.AIEnabled
	a.LearningEnabled = s.LearningEnabled
	a.Temperature = s.Temperature
	a.MaxTokens = s.MaxTokens
	a.SystemPrompt = s.SystemPrompt
	a.BlockedTopics = s.BlockedTopics
	return nil
}

// SetField assigns one setting by its JSON name, parsing value to the field's type.
func (s *Settings) SetField(key, value string) error {
	var err error
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "ai_enabled":
		s.AIEnabled, err = strconv.ParseBool(value)
	case "learning_enabled":
		s.LearningEnabled, err = strconv.ParseBool(value)
	case "temperature":
		s.Temperature, err = strconv.ParseFloat(value, 64)
		if err == nil && (s.Temperature < 0 || s.Temperature > 2) {
			err = fmt.Errorf("must be between 0 and 2")
		}
	case "max_tokens":
		s.MaxTokens, err = strconv.Atoi(value)
	case "system_prompt":
		s.SystemPrompt = value
	case "blocked_topics":
		s.BlockedTopics = value
	case "demo_days":
		s.DemoDays, err = strconv.Atoi(value)
	case "demo_daily_quota":
		s.DemoDailyQuota, err = strconv.Atoi(value)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return nil
}

// Conversation is a visitor chat session recorded for a site.
type Conversation struct {
	ID        ID         `json:"id"`
	Domain    string     `json:"domain"`
	SessionID string     `json:"session_id"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Message is a single turn within a Conversation.
type Message struct {
	Role      string     `json:"role"`
	Text      string     `json:"text"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// SetupQuestion is one step of the site onboarding questionnaire.
type SetupQuestion struct {
	Key   string
	Label string
}

// SetupQuestions are asked, in order, when onboarding a site.
var SetupQuestions = []SetupQuestion{
	{Key: "business_name", Label: "What is your business name?"},
	{Key: "industry", Label: "Which industry best describes your business?"},
	{Key: "business_description", Label: "Describe what your business does"},
	{Key: "services", Label: "List your main products or services"},
	{Key: "target_customers", Label: "Who are your target customers?"},
	{Key: "common_questions", Label: "What questions do customers usually ask?"},
	{Key: "ai_help", Label: "What should the AI help users with?"},
	{Key: "forbidden_topics", Label: "What should the AI NOT answer?"},
	{Key: "escalation_rules", Label: "When should AI escalate to a human?"},
	{Key: "tone", Label: "Preferred AI tone"},
	{Key: "greeting", Label: "AI greeting message"},
	{Key: "working_hours", Label: "Business working hours"},
	{Key: "geography_language", Label: "Geography & language"},
	{Key: "compliance", Label: "Compliance or legal restrictions"},
}

// ClientSetupInfo is what a public setup link resolves to.
type ClientSetupInfo struct {
	Site Site `json:"site"`
}
