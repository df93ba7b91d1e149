// Package forms defines the submission payloads for the three profile
// forms and validates them before reconciliation runs. Validation is a
// precondition of the diff engine: a payload that passes here can be
// reconciled without further checks.
package forms

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/stellar/go/strkey"
)

// MaxFieldBytes is the manage-data value limit in UTF-8 bytes.
const MaxFieldBytes = 64

// CollectionRow is one submitted row of a repeated-reference collection
// (MyPart for organizations, PartOf for participants). ID is form-local.
type CollectionRow struct {
	ID        string `json:"id" validate:"omitempty,rowid"`
	AccountID string `json:"account_id" validate:"omitempty,pubkey"`
}

// LoadedRow is a collection row as it was populated from the account, with
// the numbered key it came from.
type LoadedRow struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Key       string `json:"key"`
}

// CorporateForm describes an organization.
type CorporateForm struct {
	AccountID          string          `json:"account_id" validate:"omitempty,pubkey"`
	Name               string          `json:"name" validate:"required,bytemax"`
	About              string          `json:"about" validate:"required,bytemax"`
	Website            string          `json:"website" validate:"omitempty,startswith=http,bytemax"`
	MyParts            []CollectionRow `json:"my_parts" validate:"dive"`
	TelegramPartChatID string          `json:"telegram_part_chat_id" validate:"omitempty,rowid"`
	Tags               []string        `json:"tags"`
	ContractIPFSHash   string          `json:"contract_ipfs_hash" validate:"omitempty,ipfshash"`

	// Loaded carries the values the form was populated with; the diff
	// engine compares against these, not a re-read of the ledger.
	Loaded CorporateLoaded `json:"loaded"`
}

// CorporateLoaded is the corporate form state captured at population time.
type CorporateLoaded struct {
	Name               string      `json:"name"`
	About              string      `json:"about"`
	Website            string      `json:"website"`
	TelegramPartChatID string      `json:"telegram_part_chat_id"`
	ContractIPFSHash   string      `json:"contract_ipfs_hash"`
	MyParts            []LoadedRow `json:"my_parts"`
}

// ParticipantForm describes an individual participant.
type ParticipantForm struct {
	AccountID          string          `json:"account_id" validate:"omitempty,pubkey"`
	Name               string          `json:"name" validate:"required,bytemax"`
	About              string          `json:"about" validate:"required,bytemax"`
	Website            string          `json:"website" validate:"omitempty,startswith=http,bytemax"`
	PartOf             []CollectionRow `json:"part_of" validate:"dive"`
	TelegramUserID     string          `json:"telegram_user_id" validate:"omitempty,rowid"`
	Tags               []string        `json:"tags"`
	TimeTokenCode      string          `json:"time_token_code" validate:"omitempty,bytemax"`
	TimeTokenIssuer    string          `json:"time_token_issuer" validate:"omitempty,pubkey"`
	TimeTokenDesc      string          `json:"time_token_desc" validate:"omitempty,bytemax"`
	TimeTokenOfferIPFS string          `json:"time_token_offer_ipfs" validate:"omitempty,ipfshash"`

	Loaded ParticipantLoaded `json:"loaded"`
}

// ParticipantLoaded is the participant form state captured at population
// time.
type ParticipantLoaded struct {
	Name               string      `json:"name"`
	About              string      `json:"about"`
	Website            string      `json:"website"`
	TelegramUserID     string      `json:"telegram_user_id"`
	TimeTokenCode      string      `json:"time_token_code"`
	TimeTokenIssuer    string      `json:"time_token_issuer"`
	TimeTokenDesc      string      `json:"time_token_desc"`
	TimeTokenOfferIPFS string      `json:"time_token_offer_ipfs"`
	PartOf             []LoadedRow `json:"part_of"`
}

// PersonalForm describes a person without collections or tags.
type PersonalForm struct {
	AccountID string `json:"account_id" validate:"omitempty,pubkey"`
	Name      string `json:"name" validate:"required,bytemax"`
	About     string `json:"about" validate:"required,bytemax"`
	Website   string `json:"website" validate:"omitempty,startswith=http,bytemax"`

	Loaded PersonalLoaded `json:"loaded"`
}

// PersonalLoaded is the personal form state captured at population time.
type PersonalLoaded struct {
	Name    string `json:"name"`
	About   string `json:"about"`
	Website string `json:"website"`
}

func validatePubkey(fl validator.FieldLevel) bool {
	return strkey.IsValidEd25519PublicKey(fl.Field().String())
}

func validateByteMax(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxFieldBytes
}

func validateRowID(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" {
		return false
	}
	_, err := strconv.ParseUint(s, 10, 32)
	return err == nil
}

// validateIPFSHash accepts CIDv0 (Qm..., 46 chars) and CIDv1 (b..., 48+).
func validateIPFSHash(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) == 46 && s[:2] == "Qm" {
		return true
	}
	return len(s) >= 48 && s[0] == 'b'
}
