package judge

import (
	"encoding/json"
	"os"

	"rwanews/internal/logger"
)

type checklistFile struct {
	RelevanceChecklist struct {
		EvaluationPrompt string `json:"evaluation_prompt"`
	} `json:"relevance_checklist"`
}

// LoadChecklist reads the evaluation-prompt text consumed by the relevance
// judgment. A missing or unreadable file returns an empty checklist, which
// the Judge resolves to default approval.
func LoadChecklist(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("could not load relevance checklist", "path", path, "error", err)
		return ""
	}

	var cf checklistFile
	if err := json.Unmarshal(data, &cf); err != nil {
		logger.Warn("could not parse relevance checklist", "path", path, "error", err)
		return ""
	}

	return cf.RelevanceChecklist.EvaluationPrompt
}
