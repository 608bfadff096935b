package processors

import (
	"github.com/brc20x/indexer/model"
	"github.com/brc20x/indexer/opi"
)

// RegisterBuiltins registers the four built-in processors under their
// canonical op-tags. Call this once at startup before any other
// extension-supplied processor is registered, so a third-party tag can
// never shadow a built-in by registering first.
func RegisterBuiltins(reg *opi.Registry) error {
	builtins := map[model.Op]opi.Processor{
		model.OpDeploy:   Deploy{},
		model.OpMint:     Mint{},
		model.OpTransfer: Transfer{},
		model.OpNoReturn: NoReturn{},
	}
	for tag, p := range builtins {
		if err := reg.Register(string(tag), p); err != nil {
			return err
		}
	}
	return nil
}
