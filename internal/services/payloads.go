package services

import (
	"encoding/json"
	"fmt"
	"time"

	"jira-sprint-worklogs/internal/models"

	plugin "github.com/ternarybob/aktis-plugin-sdk"
)

const (
	payloadTypeSprint     = "jira_sprint_worklogs"
	payloadTypeSprintless = "jira_sprintless_worklogs"
)

// BuildPayloads wraps a report as plugin payloads: one per sprint plus one for the
// sprint-less worklogs when there are any.
func BuildPayloads(report *models.Report, hoursPerDay float64) ([]plugin.Payload, error) {
	payloads := make([]plugin.Payload, 0, len(report.Sprints)+1)

	for _, sprint := range report.Sprints {
		data, err := toMap(sprint)
		if err != nil {
			return nil, fmt.Errorf("failed to encode sprint %s: %w", sprint.ID, err)
		}
		hours := float64(sprint.TotalSeconds()) / 3600
		data["total_hours"] = models.Round2(hours)
		data["total_days"] = models.Round2(hours / hoursPerDay)

		payloads = append(payloads, plugin.Payload{
			Timestamp: report.GeneratedAt,
			Type:      payloadTypeSprint,
			Data:      data,
			Metadata: map[string]string{
				"sprint_id": sprint.ID,
				"state":     sprint.State,
				"source":    "jira_api",
			},
		})
	}

	if len(report.SprintlessWorklogs) > 0 {
		worklogs := make([]interface{}, 0, len(report.SprintlessWorklogs))
		for _, w := range report.SprintlessWorklogs {
			m, err := toMap(w)
			if err != nil {
				return nil, fmt.Errorf("failed to encode worklog %s: %w", w.ID, err)
			}
			worklogs = append(worklogs, m)
		}

		payloads = append(payloads, plugin.Payload{
			Timestamp: report.GeneratedAt,
			Type:      payloadTypeSprintless,
			Data: map[string]interface{}{
				"worklogs": worklogs,
				"count":    len(worklogs),
			},
			Metadata: map[string]string{
				"source":       "jira_api",
				"generated_at": report.GeneratedAt.Format(time.RFC3339),
			},
		})
	}

	return payloads, nil
}

func toMap(v interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
