package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	. "jira-sprint-worklogs/internal/interfaces"
)

var (
	sprintIDPattern  = regexp.MustCompile(`id=(\d+)`)
	sprintKeyPattern = regexp.MustCompile(`(?:^|,)(\w+)=`)
)

// ParseSprintField decodes the sprint custom field of an issue. Jira Server returns a list
// of encoded strings such as
//
//	com.atlassian.greenhopper.service.sprint.Sprint@1a2b[id=55,rapidViewId=3,state=CLOSED,name=Sprint 1,startDate=...,endDate=...]
//
// while Jira Cloud returns a list of sprint objects. Elements without a usable id are skipped.
func ParseSprintField(raw json.RawMessage) ([]SprintData, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var elements []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &elements); err != nil {
			return nil, fmt.Errorf("decode sprint field: %w", err)
		}
	} else {
		elements = []json.RawMessage{trimmed}
	}

	var out []SprintData
	for _, element := range elements {
		sprint, ok, err := parseSprintElement(element)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, sprint)
		}
	}
	return out, nil
}

func parseSprintElement(element json.RawMessage) (SprintData, bool, error) {
	element = bytes.TrimSpace(element)
	if len(element) == 0 || bytes.Equal(element, []byte("null")) {
		return SprintData{}, false, nil
	}

	switch element[0] {
	case '"':
		var encoded string
		if err := json.Unmarshal(element, &encoded); err != nil {
			return SprintData{}, false, fmt.Errorf("decode sprint string: %w", err)
		}
		sprint, ok := ParseSprintString(encoded)
		return sprint, ok, nil
	case '{':
		var obj jiraSprint
		if err := json.Unmarshal(element, &obj); err != nil {
			return SprintData{}, false, fmt.Errorf("decode sprint object: %w", err)
		}
		sprint := obj.toSprintData()
		return sprint, sprint.ID != "", nil
	default:
		return SprintData{}, false, nil
	}
}

// ParseSprintString extracts sprint attributes from the legacy encoded form.
// ok is false when no numeric id is present.
func ParseSprintString(encoded string) (SprintData, bool) {
	match := sprintIDPattern.FindStringSubmatch(encoded)
	if match == nil {
		return SprintData{}, false
	}

	sprint := SprintData{ID: match[1]}

	body := encoded
	if open := strings.Index(body, "["); open >= 0 {
		body = body[open+1:]
		if end := strings.LastIndex(body, "]"); end >= 0 {
			body = body[:end]
		}
	}

	fields := splitSprintFields(body)
	sprint.Name = fields["name"]
	sprint.State = fields["state"]
	sprint.StartDate = fields["startDate"]
	sprint.EndDate = fields["endDate"]
	return sprint, true
}

// splitSprintFields splits "k1=v1,k2=v2" where values may themselves contain commas.
func splitSprintFields(body string) map[string]string {
	fields := make(map[string]string)
	locs := sprintKeyPattern.FindAllStringSubmatchIndex(body, -1)
	for i, loc := range locs {
		key := body[loc[2]:loc[3]]
		valueEnd := len(body)
		if i+1 < len(locs) {
			valueEnd = locs[i+1][0]
		}
		value := body[loc[1]:valueEnd]
		if value == "<null>" {
			value = ""
		}
		fields[key] = value
	}
	return fields
}

// jiraSprint is the Agile API sprint shape, also embedded in Cloud issue fields.
type jiraSprint struct {
	ID        json.Number `json:"id"`
	Name      string      `json:"name"`
	State     string      `json:"state"`
	StartDate string      `json:"startDate"`
	EndDate   string      `json:"endDate"`
}

func (s jiraSprint) toSprintData() SprintData {
	id := s.ID.String()
	if _, err := strconv.ParseInt(id, 10, 64); err != nil {
		id = ""
	}
	return SprintData{
		ID:        id,
		Name:      s.Name,
		State:     s.State,
		StartDate: s.StartDate,
		EndDate:   s.EndDate,
	}
}
