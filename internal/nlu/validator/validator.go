// internal/nlu/validator/validator.go
package validator

import (
	"fmt"
	"strings"

	"defi-nlu/internal/nlu/entities"
	"defi-nlu/internal/nlu/intent"
)

// Result reports whether the entities satisfy the intent. Missing lists
// absent fields in required order and is never nil.
type Result struct {
	Valid   bool             `json:"valid"`
	Missing []entities.Field `json:"missing"`
}

// Unstaking native SOL needs no amount: the caller lists stake accounts to
// pick from instead.
var required = [intent.Count][]entities.Field{
	intent.StakeNative: {entities.FieldAmount},
	intent.StakeMSOL:   {entities.FieldAmount},
	intent.StakeBSOL:   {entities.FieldAmount},
	intent.UnstakeMSOL: {entities.FieldAmount},
	intent.UnstakeBSOL: {entities.FieldAmount},
	intent.Send:        {entities.FieldAmount, entities.FieldAddress},
}

// RequiredFields returns the slots an intent cannot run without.
func RequiredFields(i intent.Intent) []entities.Field {
	if !i.Valid() {
		return nil
	}
	return append([]entities.Field(nil), required[i]...)
}

func Validate(i intent.Intent, e entities.Entities) Result {
	missing := make([]entities.Field, 0)
	for _, f := range RequiredFields(i) {
		if !e.Has(f) {
			missing = append(missing, f)
		}
	}
	return Result{Valid: len(missing) == 0, Missing: missing}
}

// MissingEntitiesMessage builds the clarification shown to the user when
// validation fails.
func MissingEntitiesMessage(i intent.Intent, missing []entities.Field, originalText string) string {
	if len(missing) == 0 {
		return ""
	}

	needAmount := contains(missing, entities.FieldAmount)
	needAddress := contains(missing, entities.FieldAddress)

	switch i {
	case intent.StakeNative:
		if needAmount {
			return `How much SOL would you like to stake? For example: "stake 5 sol".`
		}
	case intent.StakeMSOL:
		if needAmount {
			return `How much SOL would you like to stake with Marinade for mSOL? For example: "stake 5 sol to msol".`
		}
	case intent.StakeBSOL:
		if needAmount {
			return `How much SOL would you like to stake with BlazeStake for bSOL? For example: "stake 5 sol to bsol".`
		}
	case intent.UnstakeMSOL:
		if needAmount {
			return `How much mSOL would you like to unstake? For example: "unstake 2 msol".`
		}
	case intent.UnstakeBSOL:
		if needAmount {
			return `How much bSOL would you like to unstake? For example: "unstake 2 bsol".`
		}
	case intent.Send:
		switch {
		case needAmount && needAddress:
			return `Please tell me how much SOL to send and the recipient address. For example: "send 1 sol to <address>".`
		case needAmount:
			return `How much SOL would you like to send?`
		case needAddress:
			return `Which address should I send it to? Please include the recipient's wallet address.`
		}
	}

	names := make([]string, len(missing))
	for idx, f := range missing {
		names[idx] = strings.ReplaceAll(string(f), "_", " ")
	}
	return fmt.Sprintf("I need a bit more information to handle %q. Please include: %s.", originalText, strings.Join(names, ", "))
}

func contains(fields []entities.Field, f entities.Field) bool {
	for _, x := range fields {
		if x == f {
			return true
		}
	}
	return false
}
