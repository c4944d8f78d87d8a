package devices

import (
	"fmt"

	"github.com/nerrad567/fcs-core/internal/setup"
	"github.com/nerrad567/fcs-core/internal/setup/parameter"
)

func piezoParams(b *setup.Builder) *setup.Builder {
	for i := 1; i <= 3; i++ {
		b.Param(parameter.Param{
			Name:        fmt.Sprintf("pos%d", i),
			Parser:      parameter.Float{},
			Description: fmt.Sprintf("Piezo position %d in volts.", i),
		})
		b.Param(parameter.Param{
			Name:        fmt.Sprintf("bit%d", i),
			Parser:      parameter.Int{},
			Description: fmt.Sprintf("Piezo position %d in bits.", i),
		})
	}
	return b
}

// Piezo is a three-axis piezo tip/tilt stage.
var Piezo = piezoParams(
	setup.NewDefinition("piezo").
		Doc("Piezo stage.").
		Param(parameter.Param{
			Name:        "action",
			Parser:      parameter.NewEnumName("", "SET_AUTO", "SET_POS", "SET_HOME", "MOVE_ALL_BITS", "MOVE_ALL_POS"),
			Required:    true,
			Description: "Piezo action.",
		}),
).
	Action(setup.Action{Name: "set_auto", Context: setup.Context{"action": "SET_AUTO"}, Setup: true}).
	Action(setup.Action{Name: "set_pos", Context: setup.Context{"action": "SET_POS"}, Setup: true}).
	Action(setup.Action{Name: "set_home", Context: setup.Context{"action": "SET_HOME"}, Setup: true}).
	Action(setup.Action{
		Name:    "move_all_bits",
		Context: setup.Context{"action": "MOVE_ALL_BITS"},
		Args:    []setup.Arg{{Name: "bit1", Optional: true}, {Name: "bit2", Optional: true}, {Name: "bit3", Optional: true}},
		Setup:   true,
	}).
	Action(setup.Action{
		Name:    "move_all_pos",
		Context: setup.Context{"action": "MOVE_ALL_POS"},
		Args:    []setup.Arg{{Name: "pos1", Optional: true}, {Name: "pos2", Optional: true}, {Name: "pos3", Optional: true}},
		Setup:   true,
	}).
	MustBuild()
