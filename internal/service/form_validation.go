package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"member-finance/internal/core/domain"
	"member-finance/pkg/apperror"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	RecipientTypeMember = "member"
	RecipientTypeOther  = "other"

	minDescriptionLen = 2
	maxDescriptionLen = 200
)

var (
	minAmount = decimal.NewFromInt(1)
	maxAmount = decimal.NewFromInt(100_000_000)
)

// TransactionFormInput is the raw transaction entry as typed by a member.
type TransactionFormInput struct {
	Date          string `json:"date" validate:"required,calendar_date"`
	Amount        string `json:"amount" validate:"required,amount_range"`
	Type          string `json:"type" validate:"required,oneof=income expense"`
	Category      string `json:"category" validate:"required"`
	Description   string `json:"description" validate:"description_length"`
	RecipientType string `json:"recipient_type"`
	RecipientID   string `json:"recipient_id"`
	RecipientName string `json:"recipient_name" validate:"max=100"`
}

// formValidator is safe for concurrent use once built.
var formValidator = newFormValidator()

func newFormValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("calendar_date", validateCalendarDate)
	_ = v.RegisterValidation("amount_range", validateAmountRange)
	_ = v.RegisterValidation("description_length", validateDescriptionLength)
	v.RegisterStructValidation(validateTransactionForm, TransactionFormInput{})

	return v
}

// validateCalendarDate accepts YYYY-MM-DD strings naming a real day.
func validateCalendarDate(fl validator.FieldLevel) bool {
	_, err := domain.ParseDate(fl.Field().String())
	return err == nil
}

func validateAmountRange(fl validator.FieldLevel) bool {
	amount, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
	if err != nil {
		return false
	}
	return amount.GreaterThanOrEqual(minAmount) && amount.LessThanOrEqual(maxAmount)
}

// validateDescriptionLength counts runes after trimming, matching the value
// that gets stored.
func validateDescriptionLength(fl validator.FieldLevel) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(fl.Field().String()))
	return n >= minDescriptionLen && n <= maxDescriptionLen
}

// validateTransactionForm checks the rules that span fields: the category
// must belong to the chosen type, and expenses need a recipient kind.
func validateTransactionForm(sl validator.StructLevel) {
	in := sl.Current().Interface().(TransactionFormInput)
	txType := domain.TransactionType(in.Type)
	if !txType.Valid() {
		return
	}

	if in.Category != "" && !domain.IsCategoryOf(domain.Category(in.Category), txType) {
		sl.ReportError(in.Category, "category", "Category", "category_for_type", in.Type)
	}

	if txType != domain.TransactionTypeExpense {
		return
	}

	switch in.RecipientType {
	case RecipientTypeMember:
		if in.RecipientID == "" {
			sl.ReportError(in.RecipientID, "recipient_id", "RecipientID", "required_for_member", "")
		} else if _, err := uuid.Parse(in.RecipientID); err != nil {
			sl.ReportError(in.RecipientID, "recipient_id", "RecipientID", "uuid", "")
		}
	case RecipientTypeOther:
	default:
		sl.ReportError(in.RecipientType, "recipient_type", "RecipientType", "recipient_type", "")
	}
}

// ValidateTransactionForm checks in against the entry rules and converts it
// into a NewTransaction without a resolved recipient. Failures are VAL_001
// errors listing every offending field.
func ValidateTransactionForm(in TransactionFormInput) (domain.NewTransaction, error) {
	if err := formValidator.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return domain.NewTransaction{}, apperror.Validation(err.Error())
		}
		fields := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperror.FieldError{
				Field:   fe.Field(),
				Message: fieldMessage(fe),
			})
		}
		return domain.NewTransaction{}, apperror.Validation("", fields...)
	}

	// Both parse cleanly; the validator already checked them.
	date, _ := domain.ParseDate(in.Date)
	amount, _ := decimal.NewFromString(strings.TrimSpace(in.Amount))

	return domain.NewTransaction{
		Date:        date,
		Amount:      amount.Round(2),
		Type:        domain.TransactionType(in.Type),
		Category:    domain.Category(in.Category),
		Description: strings.TrimSpace(in.Description),
	}, nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "calendar_date":
		return "must be a valid date in YYYY-MM-DD format"
	case "amount_range":
		return fmt.Sprintf("must be a number between %s and %s", minAmount, maxAmount)
	case "oneof":
		return "must be one of: " + fe.Param()
	case "description_length":
		return fmt.Sprintf("must be between %d and %d characters", minDescriptionLen, maxDescriptionLen)
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "category_for_type":
		cats := domain.CategoriesFor(domain.TransactionType(fe.Param()))
		names := make([]string, len(cats))
		for i, c := range cats {
			names[i] = string(c)
		}
		return fmt.Sprintf("must be one of the %s categories: %s", fe.Param(), strings.Join(names, ", "))
	case "required_for_member":
		return "is required when recipient_type is member"
	case "uuid":
		return "must be a valid member id"
	case "recipient_type":
		return "must be member or other"
	default:
		return "is invalid"
	}
}

// ResolveRecipient derives the stored recipient text. Income never has a
// recipient; member recipients are looked up by id in members.
func ResolveRecipient(in TransactionFormInput, members domain.MemberDirectory) string {
	if domain.TransactionType(in.Type) != domain.TransactionTypeExpense {
		return ""
	}

	switch in.RecipientType {
	case RecipientTypeMember:
		id, err := uuid.Parse(in.RecipientID)
		if err != nil {
			return ""
		}
		return members.NameOf(id)
	case RecipientTypeOther:
		return in.RecipientName
	default:
		return ""
	}
}
