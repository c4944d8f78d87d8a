package commands

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/spf13/cobra"

	"github.com/nerrad567/fcs-core/internal/setup"
)

// payloadFlags are the payload sources accepted by validate and setup.
// Each flag may be repeated; elements are applied in the order json, file,
// spf.
type payloadFlags struct {
	json  []string
	files []string
	spf   []string
}

func (p *payloadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&p.json, "json", "j", nil, "setup payload as a JSON string")
	cmd.Flags().StringArrayVarP(&p.files, "file", "f", nil, "file holding a JSON setup payload")
	cmd.Flags().StringArrayVar(&p.spf, "spf", nil, `compact payload "devname:key=value,devname:key=value"`)
}

func (p *payloadFlags) empty() bool {
	return len(p.json) == 0 && len(p.files) == 0 && len(p.spf) == 0
}

var errNoPayload = errors.New("no payload given")

// load validates every source against the buffer schema and applies the
// elements. SPF sources need the server device map.
func (p *payloadFlags) load(ctx context.Context, buf *setup.Buffer) error {
	if p.empty() {
		return errNoPayload
	}
	receiver, err := buf.Receiver()
	if err != nil {
		return err
	}

	var elements []setup.Element
	for _, s := range p.json {
		els, err := receiver.LoadJSONString(s)
		if err != nil {
			return err
		}
		elements = append(elements, els...)
	}
	for _, path := range p.files {
		els, err := receiver.LoadJSONFile(path)
		if err != nil {
			return err
		}
		elements = append(elements, els...)
	}
	if len(p.spf) > 0 {
		devtypes, err := buf.DevTypes(ctx)
		if err != nil {
			return err
		}
		for _, spf := range p.spf {
			els, err := receiver.LoadSPF(spf, devtypes)
			if err != nil {
				return err
			}
			elements = append(elements, els...)
		}
	}
	return buf.SetElements(elements, true)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
