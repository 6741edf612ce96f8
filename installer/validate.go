package installer

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
)

// ValidateScript returns everything that's wrong with a script, as
// human-readable findings. An empty result means the script is usable.
// runners may be nil, in which case runner names aren't checked.
func ValidateScript(script *Script, runners RunnerRegistry) []string {
	var findings []string
	if !script.contentOK {
		return append(findings, "Script must be a dictionary")
	}

	required := []struct {
		name  string
		value string
	}{
		{"runner", script.Runner},
		{"game_name", script.Name},
		{"game_slug", script.GameSlug},
	}
	for _, field := range required {
		if validation.Validate(field.value, validation.Required) != nil {
			findings = append(findings, fmt.Sprintf("Missing field '%s'", field.name))
		}
	}

	switch script.Runner {
	case "libretro":
		if script.GameValue("core") == nil {
			findings = append(findings, "Missing libretro core in game section")
		}
	case "steam":
		if validation.Validate(stringify(script.GameValue("appid")), validation.Required) != nil {
			findings = append(findings, "Missing appid for Steam game")
		}
	}

	if script.Requires() != "" && script.Extends() != "" {
		findings = append(findings, "Scripts can't have both extends and requires")
	}

	if runners != nil && script.Runner != "" {
		if _, err := runners.PlatformOf(script.Runner); err != nil {
			findings = append(findings, err.Error())
		}
	}

	return findings
}
