// internal/models/decision.go
package models

import "fmt"

// DecisionField names one field of the decision form
type DecisionField string

const (
	FieldImmediateAction DecisionField = "immediateAction"
	FieldTeamComm        DecisionField = "teamComm"
	FieldClientAction    DecisionField = "clientAction"
	FieldAdditionalNotes DecisionField = "additionalNotes"
)

// RequiredFields must all be non-empty before an explicit submit
var RequiredFields = []DecisionField{FieldImmediateAction, FieldTeamComm, FieldClientAction}

// Decisions is the decision form filled in during the decision phase
type Decisions struct {
	ImmediateAction string `json:"immediateAction"`
	TeamComm        string `json:"teamComm"`
	ClientAction    string `json:"clientAction"`
	AdditionalNotes string `json:"additionalNotes"`
}

// Get returns the value of a field
func (d Decisions) Get(field DecisionField) (string, error) {
	switch field {
	case FieldImmediateAction:
		return d.ImmediateAction, nil
	case FieldTeamComm:
		return d.TeamComm, nil
	case FieldClientAction:
		return d.ClientAction, nil
	case FieldAdditionalNotes:
		return d.AdditionalNotes, nil
	default:
		return "", fmt.Errorf("unknown decision field %q", field)
	}
}

// Set updates one field
func (d *Decisions) Set(field DecisionField, value string) error {
	switch field {
	case FieldImmediateAction:
		d.ImmediateAction = value
	case FieldTeamComm:
		d.TeamComm = value
	case FieldClientAction:
		d.ClientAction = value
	case FieldAdditionalNotes:
		d.AdditionalNotes = value
	default:
		return fmt.Errorf("unknown decision field %q", field)
	}
	return nil
}

// Complete reports whether every required field is filled
func (d Decisions) Complete() bool {
	return d.ImmediateAction != "" && d.TeamComm != "" && d.ClientAction != ""
}

// DecisionOption is one entry of a select on the decision form
type DecisionOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// DecisionCatalog lists the selectable values of the required fields
var DecisionCatalog = map[DecisionField][]DecisionOption{
	FieldImmediateAction: {
		{Value: "evacuate", Label: "Evacuar oficinas inmediatamente"},
		{Value: "police", Label: "Llamar a la policía"},
		{Value: "security", Label: "Contactar seguridad del edificio"},
		{Value: "continue", Label: "Continuar operaciones normalmente"},
	},
	FieldTeamComm: {
		{Value: "transparent", Label: "Transparencia total con el equipo"},
		{Value: "partial", Label: "Información parcial (evitar pánico)"},
		{Value: "minimal", Label: "Solo información esencial \"Need to know\""},
		{Value: "silence", Label: "Silencio hasta tener confirmación"},
	},
	FieldClientAction: {
		{Value: "cancel", Label: "Cancelar todo (Día perdido)"},
		{Value: "postpone", Label: "Posponer reuniones críticas"},
		{Value: "remote", Label: "Switch inmediato a remoto"},
		{Value: "normal", Label: "Business as usual"},
	},
}
