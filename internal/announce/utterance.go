package announce

import (
	"fmt"
	"strings"
)

// BuildUtterance produces the spoken call text. The customer name is said
// twice within one utterance for intelligibility on a noisy floor, and the
// call code is spelled character by character.
func BuildUtterance(customerName, password string) string {
	return fmt.Sprintf(
		"Atenção: %s. Senha %s. %s. Por favor, comparecer ao atendimento. Seu pedido está pronto.",
		customerName, SpellPassword(password), customerName,
	)
}

// SpellPassword expands a call code such as P-003 into "P, 0, 0, 3" so the
// synthesizer reads each character individually.
func SpellPassword(password string) string {
	var parts []string
	for _, r := range password {
		if r == '-' || r == ' ' {
			continue
		}
		parts = append(parts, string(r))
	}
	return strings.Join(parts, ", ")
}
