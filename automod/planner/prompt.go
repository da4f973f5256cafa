package planner

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// buildSystemPrompt enumerates the registered actions (name, typed args,
// description) and instructs the model to answer with a strict JSON array of
// {name, args} objects.
func buildSystemPrompt(specs []ActionSpec) string {
	var b strings.Builder
	b.WriteString("Respond strictly with a JSON array in the following format:\n")
	b.WriteString("`[{\"name\": ..., \"args\": {...}}, ...]`\n")
	b.WriteString("`name` is the function name, `args` is an object of arguments.\n")
	b.WriteString("Output only valid JSON. Choose functions based on the user's request and the function descriptions. ")
	b.WriteString("You are allowed to call multiple functions, listing them in order in the output.\n\n")
	b.WriteString("Each function must include all and only the arguments specified for it. ")
	b.WriteString("Do not invent additional arguments and do not omit required ones.\n\n")
	b.WriteString("Available functions:\n")
	for _, spec := range specs {
		b.WriteString(fmt.Sprintf("- %s(%s)", spec.Name, formatArgs(spec.Args)))
		if spec.Description != "" {
			b.WriteString(" - " + spec.Description)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatArgs(args map[string]string) string {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, args[name]))
	}
	return strings.Join(parts, ", ")
}

func joinRules(docs []string) string {
	return strings.Join(docs, "\n\n")
}

// parsePlan extracts the first top-level JSON array from free-form model
// output and decodes it as an ordered list of planned actions. Anything that
// is not an array of objects is a parse failure.
func parsePlan(raw string) ([]PlannedAction, error) {
	start := strings.Index(raw, "[")
	end := strings.LastIndex(raw, "]")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON array found in output")
	}
	seg := raw[start : end+1]

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(seg), &elems); err != nil {
		return nil, fmt.Errorf("invalid JSON array: %w", err)
	}

	plan := make([]PlannedAction, 0, len(elems))
	for i, el := range elems {
		var pa PlannedAction
		if err := json.Unmarshal(el, &pa); err != nil {
			return nil, fmt.Errorf("plan element %d is not an object: %w", i, err)
		}
		// null and nameless objects decode into a zero value; they are plan
		// shape violations, not actions to be skipped downstream
		if pa.Name == "" {
			return nil, fmt.Errorf("plan element %d has no action name", i)
		}
		plan = append(plan, pa)
	}
	return plan, nil
}
