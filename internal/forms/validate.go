package forms

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	must := func(err error) {
		if err != nil {
			panic(fmt.Sprintf("invalid validator registration: %v", err))
		}
	}
	must(v.RegisterValidation("pubkey", validatePubkey))
	must(v.RegisterValidation("bytemax", validateByteMax))
	must(v.RegisterValidation("rowid", validateRowID))
	must(v.RegisterValidation("ipfshash", validateIPFSHash))

	v.RegisterStructValidation(corporateStructRules, CorporateForm{})
	v.RegisterStructValidation(participantStructRules, ParticipantForm{})

	return v
}

// corporateStructRules enforces the cross-field rules: MyPart refs must be
// unique among themselves and must not point back at the form's own
// account.
func corporateStructRules(sl validator.StructLevel) {
	form := sl.Current().Interface().(CorporateForm)
	checkCollectionRows(sl, "MyParts", form.MyParts, form.AccountID)
}

func participantStructRules(sl validator.StructLevel) {
	form := sl.Current().Interface().(ParticipantForm)
	checkCollectionRows(sl, "PartOf", form.PartOf, form.AccountID)
}

func checkCollectionRows(sl validator.StructLevel, field string, rows []CollectionRow, accountID string) {
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		if row.AccountID == "" {
			continue
		}
		if _, dup := seen[row.AccountID]; dup {
			sl.ReportError(rows, field, field, "uniquerefs", "")
			return
		}
		seen[row.AccountID] = struct{}{}
		if accountID != "" && row.AccountID == accountID {
			sl.ReportError(rows, field, field, "selfref", "")
			return
		}
	}
}

// ValidationError carries per-field messages so the UI can attach each one
// to its input.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		msgs = append(msgs, field+": "+msg)
	}
	return strings.Join(msgs, "; ")
}

// Validate checks a form payload and returns a *ValidationError describing
// every failing field, or nil.
func Validate(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[strings.ToLower(fe.Field())] = fieldMessage(fe)
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "pubkey":
		return fmt.Sprintf("%s is not a valid Stellar account ID", field)
	case "bytemax":
		return fmt.Sprintf("%s must not exceed %d bytes in UTF-8 encoding", field, MaxFieldBytes)
	case "rowid":
		return fmt.Sprintf("%s must contain only numbers", field)
	case "ipfshash":
		return fmt.Sprintf("%s is not a valid IPFS hash", field)
	case "startswith":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "uniquerefs":
		return fmt.Sprintf("%s account IDs must be unique", field)
	case "selfref":
		return fmt.Sprintf("%s account IDs must not match the main account ID", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
