// cmd/demo/render.go
package main

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/models"
	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/simulation"
)

const cliBoxMaxWidth = 78

func printSnapshot(out *console, snap simulation.Snapshot) {
	switch snap.Phase {
	case simulation.PhaseIntro:
		out.printf("  [intro] escribe start para comenzar\n")
	case simulation.PhasePlaying:
		title := fmt.Sprintf("%s  %s  (%d/%d, ruta %s)", snap.Step.Time, snap.Step.Title, snap.StepIndex+1, snap.StepTotal, snap.RouteID)
		out.box(title, renderStep(snap.Step))
	case simulation.PhaseDecision:
		out.box("Punto de decisión", fmt.Sprintf("Tiempo restante: %s\nEscribe options para ver las respuestas posibles.", snap.RemainingDisplay))
	case simulation.PhaseResults:
		if snap.Results != nil {
			out.box("Resultados", renderResults(*snap.Results))
		}
	}
}

func printDecisions(out *console, snap simulation.Snapshot) {
	d := snap.Decisions
	out.printf("  immediateAction=%q teamComm=%q clientAction=%q listo=%v\n",
		d.ImmediateAction, d.TeamComm, d.ClientAction, snap.CanSubmit)
}

func printOptions(out *console) {
	var b strings.Builder
	for _, field := range models.RequiredFields {
		b.WriteString(string(field) + ":\n")
		for _, opt := range models.DecisionCatalog[field] {
			fmt.Fprintf(&b, "  %-12s %s\n", opt.Value, opt.Label)
		}
	}
	b.WriteString(string(models.FieldAdditionalNotes) + ": texto libre")
	out.box("Opciones", b.String())
}

// renderStep draws the static part of a card; messages appear as reveals
func renderStep(step models.Step) string {
	switch c := step.Content.(type) {
	case models.GroupChatContent:
		return fmt.Sprintf("grupo de WhatsApp, %d mensajes", len(c.Messages))
	case models.WhatsAppChatContent:
		lines := []string{"chat con " + c.ProfileName}
		for _, m := range c.Messages {
			lines = append(lines, formatMessage(m))
		}
		return strings.Join(lines, "\n")
	case models.EmailContent:
		return fmt.Sprintf("correo de %s para %s", c.From, c.To)
	case models.MixedContent:
		return fmt.Sprintf("%d eventos simultáneos", len(c.Steps))
	case models.ExplosionContent:
		return fmt.Sprintf("%d publicaciones, %d mensajes", len(c.Tweets), len(c.WhatsApp))
	case models.InstructionsContent:
		lines := []string{c.Title}
		for _, in := range c.Instructions {
			lines = append(lines, "• "+in)
		}
		return strings.Join(append(lines, c.Urgency, "Prioridad: "+c.Priority), "\n")
	case models.TransitionContent:
		lines := []string{c.Title}
		for i, opt := range c.Options {
			lines = append(lines, fmt.Sprintf("%d) %s", i+1, opt.Option))
		}
		return strings.Join(lines, "\n")
	case models.BreakingNewContent:
		return "ÚLTIMA HORA: " + c.Headline
	case models.HeadingNewContent:
		return c.Date + "\n" + c.Heading + "\n\n" + c.Article
	case models.MeetingRoomContent:
		lines := make([]string, 0, len(c.Rooms))
		for _, r := range c.Rooms {
			lines = append(lines, r.Name+": "+r.URL)
		}
		return strings.Join(lines, "\n")
	case models.NotificationContent, models.AlertContent, models.TweetContent:
		return ""
	}
	return string(step.Type)
}

// describeReveal renders the part of step a reveal points at
func describeReveal(step models.Step, r simulation.Reveal) string {
	leaf, ok := stepAt(step, r.Path)
	if !ok {
		return ""
	}

	switch c := leaf.Content.(type) {
	case models.GroupChatContent:
		if r.Kind == simulation.RevealMessage && r.Item < len(c.Messages) {
			return formatMessage(c.Messages[r.Item])
		}
	case models.EmailContent:
		return fmt.Sprintf("✉ %s\n  %s", c.Subject, strings.ReplaceAll(c.Body, "\n", "\n  "))
	case models.ExplosionContent:
		switch r.Kind {
		case simulation.RevealExplosion:
			return c.Explosion
		case simulation.RevealTweet:
			if r.Item < len(c.Tweets) {
				t := c.Tweets[r.Item]
				return fmt.Sprintf("%s (%s): %s", t.User, t.Handle, t.Message)
			}
		case simulation.RevealWhatsApp:
			lines := make([]string, 0, len(c.WhatsApp)+1)
			for _, m := range c.WhatsApp {
				lines = append(lines, formatMessage(m))
			}
			lines = append(lines, fmt.Sprintf("⚠ %s: %s", c.Threat.Number, c.Threat.Message))
			return strings.Join(lines, "\n  ")
		}
	case models.AlertContent:
		return fmt.Sprintf("🚨 %s: %s (urgencia %s, prioridad %s)", c.Title, c.Context, c.Urgency, c.Priority)
	case models.NotificationContent:
		return fmt.Sprintf("[%s] %s: %s", c.Kind, c.Sender, c.Message)
	case models.TweetContent:
		return fmt.Sprintf("%s (@%s): %s", c.User, c.Handle, c.Message)
	}
	return ""
}

// stepAt follows a reveal path such as "0.1.0" into nested mixed steps
func stepAt(step models.Step, path string) (models.Step, bool) {
	parts := strings.Split(path, ".")
	if len(parts) == 0 || parts[0] != "0" {
		return models.Step{}, false
	}
	for _, p := range parts[1:] {
		mixed, ok := step.Content.(models.MixedContent)
		if !ok {
			return models.Step{}, false
		}
		i, err := strconv.Atoi(p)
		if err != nil || i < 0 || i >= len(mixed.Steps) {
			return models.Step{}, false
		}
		step = mixed.Steps[i]
	}
	return step, true
}

func formatMessage(m models.Message) string {
	if m.Sent {
		return "→ " + m.Sender + ": " + m.Message
	}
	return "← " + m.Sender + ": " + m.Message
}

func renderResults(r simulation.Results) string {
	var b strings.Builder
	for _, f := range r.Feedback {
		fmt.Fprintf(&b, "%s [%s]\n  %s\n", f.Heading, f.Verdict, f.Message)
	}
	if r.Notes != "" {
		fmt.Fprintf(&b, "Notas: %s\n", r.Notes)
	}
	fmt.Fprintf(&b, "Tiempo restante: %s\n%s", r.RemainingDisplay, r.PacingMessage)
	if r.Forced {
		b.WriteString("\n(el tiempo se agotó)")
	}
	return b.String()
}

func printBox(title, content string) {
	wrappedLines := wrapContentForBox(content, cliBoxMaxWidth)
	maxWidth := utf8.RuneCountInString(title)
	for _, line := range wrappedLines {
		if w := utf8.RuneCountInString(line); w > maxWidth {
			maxWidth = w
		}
	}
	border := strings.Repeat("─", maxWidth+2)
	fmt.Println("┌" + border + "┐")
	if title != "" {
		fmt.Printf("│ %s │\n", padRight(title, maxWidth))
		fmt.Println("├" + border + "┤")
	}
	for _, line := range wrappedLines {
		fmt.Printf("│ %s │\n", padRight(line, maxWidth))
	}
	fmt.Println("└" + border + "┘")
}

func wrapContentForBox(content string, maxWidth int) []string {
	var result []string
	for _, rawLine := range strings.Split(content, "\n") {
		runes := []rune(strings.TrimRight(rawLine, " "))
		for len(runes) > maxWidth {
			result = append(result, string(runes[:maxWidth]))
			runes = runes[maxWidth:]
		}
		result = append(result, string(runes))
	}
	return result
}

func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
