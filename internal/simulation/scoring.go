// internal/simulation/scoring.go
package simulation

import (
	"fmt"
	"strings"

	"github.com/OmarTouchPoint/Crisis-Training-Demo-TPM/internal/models"
)

// Verdict classifies one answer
type Verdict string

const (
	VerdictCorrect     Verdict = "correct"
	VerdictPartial     Verdict = "partial"
	VerdictFatal       Verdict = "fatal"
	VerdictBest        Verdict = "best"
	VerdictDangerous   Verdict = "dangerous"
	VerdictRisky       Verdict = "risky"
	VerdictSound       Verdict = "sound"
	VerdictCostly      Verdict = "costly"
	VerdictNegligent   Verdict = "negligent"
	VerdictUnspecified Verdict = "unspecified"
)

// Pacing comments on how much of the clock was left
type Pacing string

const (
	PacingBrisk      Pacing = "brisk"
	PacingDeliberate Pacing = "deliberate"
)

// Feedback is the canned result for one decision field
type Feedback struct {
	Field   models.DecisionField `json:"field"`
	Heading string               `json:"heading"`
	Choice  string               `json:"choice"`
	Verdict Verdict              `json:"verdict"`
	Message string               `json:"message"`
}

// Results is what the results phase displays
type Results struct {
	Feedback         []Feedback `json:"feedback"`
	Notes            string     `json:"notes,omitempty"`
	Remaining        int        `json:"remaining_seconds"`
	RemainingDisplay string     `json:"remaining_display"`
	Pacing           Pacing     `json:"pacing"`
	PacingMessage    string     `json:"pacing_message"`
	Forced           bool       `json:"forced"`
}

// Evaluate maps decisions and the time left to canned feedback. It has
// no state; the same input always yields the same output.
func Evaluate(d models.Decisions, remaining, threshold int) Results {
	r := Results{
		Feedback: []Feedback{
			immediateActionFeedback(d.ImmediateAction),
			teamCommFeedback(d.TeamComm),
			clientActionFeedback(d.ClientAction),
		},
		Notes:            strings.TrimSpace(d.AdditionalNotes),
		Remaining:        remaining,
		RemainingDisplay: FormatTime(remaining),
	}
	if remaining > threshold {
		r.Pacing = PacingBrisk
		r.PacingMessage = "Toma de decisiones muy ágil."
	} else {
		r.Pacing = PacingDeliberate
		r.PacingMessage = "Se tomó tiempo prudente para analizar."
	}
	return r
}

func immediateActionFeedback(choice string) Feedback {
	f := Feedback{Field: models.FieldImmediateAction, Heading: "Acción Inmediata", Choice: choice}
	switch choice {
	case "evacuate":
		f.Verdict, f.Message = VerdictCorrect, "Correcto. Ante amenaza de bomba, la evacuación es no negociable."
	case "continue":
		f.Verdict, f.Message = VerdictFatal, "Error fatal. Ignorar amenazas de bomba pone vidas en riesgo."
	default:
		f.Verdict, f.Message = VerdictPartial, "Parcialmente correcto, pero insuficiente ante el riesgo de explosivos."
	}
	return f
}

func teamCommFeedback(choice string) Feedback {
	f := Feedback{Field: models.FieldTeamComm, Heading: "Comunicación con el Equipo", Choice: choice}
	switch choice {
	case "transparent":
		f.Verdict, f.Message = VerdictBest, "La mejor opción. En crisis de seguridad física, el equipo necesita saber a qué se enfrenta para protegerse."
	case "silence":
		f.Verdict, f.Message = VerdictDangerous, "Muy peligroso. El rumor hace más daño que la verdad, y la ignorancia expone al equipo."
	default:
		f.Verdict, f.Message = VerdictRisky, "Estrategia aceptable para evitar pánico masivo, pero riesgosa."
	}
	return f
}

func clientActionFeedback(choice string) Feedback {
	f := Feedback{Field: models.FieldClientAction, Heading: "Gestión con Clientes", Choice: choice}
	switch choice {
	case "remote", "postpone":
		f.Verdict, f.Message = VerdictSound, "Adecuado. Proteger al equipo sin abandonar al cliente mantiene la confianza."
	case "cancel":
		f.Verdict, f.Message = VerdictCostly, "Seguro, pero costoso. Cancelar sin alternativa daña la relación con el cliente."
	case "normal":
		f.Verdict, f.Message = VerdictNegligent, "Negligente. Mantener eventos presenciales expone a clientes y equipo."
	default:
		f.Verdict, f.Message = VerdictUnspecified, "Sin decisión registrada sobre los clientes."
	}
	return f
}

// FormatTime renders seconds as m:ss
func FormatTime(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
