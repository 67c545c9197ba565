package menu

import (
	"fmt"

	"github.com/temoto/motormenu/internal/motor"
)

func Render(v View, c Context, config motor.Snapshot) (string, string) {
	switch v {
	case ViewNone:
		return "", ""
	case ViewSummary:
		return Summary(config)
	case ViewSelectMotor:
		return "Select Motor:", fmt.Sprintf("> %d", c.Motor)
	case ViewConfigMotor:
		return fmt.Sprintf("Config Motor: %d", c.Motor), "> " + c.Variable.String()
	case ViewSelectVariable:
		return "Select Variable:", "> " + c.Variable.String()
	case ViewSetValue:
		return "Set " + c.Variable.String(), "> " + c.Variable.ValueName(c.Edit)
	}
	panic(fmt.Sprintf("code error menu render view=%d", v))
}

// Summary is one line per motor: "Motor 0: OFF, 0, L".
func Summary(config motor.Snapshot) (string, string) {
	return summaryLine(0, config[0]), summaryLine(1, config[1])
}

func summaryLine(i int, c motor.Config) string {
	return fmt.Sprintf("Motor %d: %s", i, c.String())
}
