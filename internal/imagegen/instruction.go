package imagegen

import "strings"

var tryOnRules = []string{
	"Keep the person's face, body, pose, expression, hair, and proportions exactly the same.",
	"Keep the background, lighting, shadows, and camera angle unchanged.",
	"Do NOT modify skin tone, body shape, posture, or environment.",
	"Do NOT enhance, beautify, stylize, or edit anything else.",
	"Do NOT change fabric texture, color, logo, or design of the clothing.",
	"Preserve realistic wrinkles, folds, and natural fit.",
}

// TryOnInstruction is the fixed prompt sent with every try-on job.
func TryOnInstruction() string {
	return BuildInstruction("")
}

// BuildInstruction renders the try-on prompt. Notes, when non-empty, are
// appended as an extra rule and never replace the fixed constraints.
func BuildInstruction(notes string) string {
	var b strings.Builder
	b.WriteString("Use the uploaded person image and the uploaded clothing image.\n\n")
	b.WriteString("Goal: Replace only the clothing on the person with the uploaded clothing item.\n\n")
	b.WriteString("Rules:\n")
	for _, rule := range tryOnRules {
		b.WriteString("- ")
		b.WriteString(rule)
		b.WriteByte('\n')
	}
	if notes = strings.TrimSpace(notes); notes != "" {
		b.WriteString("- ")
		b.WriteString(notes)
		b.WriteByte('\n')
	}
	b.WriteString("\nTask:\nPlace the uploaded clothing naturally on the person as if they are wearing it.\n\n")
	b.WriteString("Output:\nA photorealistic image where only the clothing is changed.\n")
	b.WriteString("Everything else must match the original person image perfectly.\n")
	b.WriteString("High resolution, ultra-realistic.\n")
	return b.String()
}
