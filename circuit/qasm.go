package circuit

import (
	"fmt"
	"strings"
)

// ToQASM экспортирует схему в текст OpenQASM 2.0. Измерения пишут результат
// в классический бит с тем же индексом, что и измеряемый кубит.
func (c *Circuit) ToQASM() (string, error) {
	var b strings.Builder
	b.WriteString("OPENQASM 2.0;\n")
	b.WriteString("include \"qelib1.inc\";\n")
	fmt.Fprintf(&b, "qreg q[%d];\n", c.numQubits)
	creg := c.numClassicalBits
	if creg == 0 {
		creg = c.numQubits
	}
	fmt.Fprintf(&b, "creg c[%d];\n", creg)

	for _, g := range c.gates {
		switch g.Kind {
		case GateH:
			fmt.Fprintf(&b, "h q[%d];\n", g.Targets[0])
		case GateX:
			fmt.Fprintf(&b, "x q[%d];\n", g.Targets[0])
		case GateY:
			fmt.Fprintf(&b, "y q[%d];\n", g.Targets[0])
		case GateZ:
			fmt.Fprintf(&b, "z q[%d];\n", g.Targets[0])
		case GateS:
			fmt.Fprintf(&b, "s q[%d];\n", g.Targets[0])
		case GatePhase:
			fmt.Fprintf(&b, "u1(%.12g) q[%d];\n", g.Parameter, g.Targets[0])
		case GateRX:
			fmt.Fprintf(&b, "rx(%.12g) q[%d];\n", g.Parameter, g.Targets[0])
		case GateRY:
			fmt.Fprintf(&b, "ry(%.12g) q[%d];\n", g.Parameter, g.Targets[0])
		case GateRZ:
			fmt.Fprintf(&b, "rz(%.12g) q[%d];\n", g.Parameter, g.Targets[0])
		case GateCNOT:
			fmt.Fprintf(&b, "cx q[%d],q[%d];\n", g.Controls[0], g.Targets[0])
		case GateSwap:
			fmt.Fprintf(&b, "swap q[%d],q[%d];\n", g.Targets[0], g.Targets[1])
		case GateCP:
			fmt.Fprintf(&b, "cu1(%.12g) q[%d],q[%d];\n", g.Parameter, g.Controls[0], g.Targets[0])
		case GateMeasure:
			fmt.Fprintf(&b, "measure q[%d] -> c[%d];\n", g.Targets[0], g.Targets[0])
		default:
			return "", fmt.Errorf("%w: %q", ErrUnknownGate, g.Kind)
		}
	}
	return b.String(), nil
}
