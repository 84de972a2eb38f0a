package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"member-finance/internal/core/domain"
	"member-finance/internal/core/ports/mocks"
	"member-finance/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func validIncomeInput() TransactionFormInput {
	return TransactionFormInput{
		Date:        "2025-04-12",
		Amount:      "250",
		Type:        "income",
		Category:    "donation",
		Description: "Spring fundraiser",
	}
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	require.Equal(t, apperror.CodeValidation, appErr.Code)

	names := make([]string, 0, len(appErr.Fields))
	for _, f := range appErr.Fields {
		names = append(names, f.Field)
	}
	return names
}

// ==================== Validation ====================

func TestValidateTransactionForm_Valid(t *testing.T) {
	nt, err := ValidateTransactionForm(validIncomeInput())
	require.NoError(t, err)

	assert.Equal(t, "2025-04-12", nt.Date.Format(domain.DateLayout))
	assert.True(t, nt.Amount.Equal(dec("250")))
	assert.Equal(t, domain.TransactionTypeIncome, nt.Type)
	assert.Equal(t, domain.CategoryDonation, nt.Category)
	assert.Equal(t, "Spring fundraiser", nt.Description)
	assert.Empty(t, nt.Recipient)
}

func TestValidateTransactionForm_DescriptionStoredTrimmed(t *testing.T) {
	in := validIncomeInput()
	in.Description = "  Spring fundraiser \t"

	nt, err := ValidateTransactionForm(in)
	require.NoError(t, err)
	assert.Equal(t, "Spring fundraiser", nt.Description)
}

func TestValidateTransactionForm_AmountBoundaries(t *testing.T) {
	tests := []struct {
		amount string
		ok     bool
	}{
		{"0", false},
		{"0.99", false},
		{"1", true},
		{"1.00", true},
		{"99999999.99", true},
		{"100000000", true},
		{"100000000.01", false},
		{"100000001", false},
		{"-5", false},
		{"abc", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			in := validIncomeInput()
			in.Amount = tt.amount
			_, err := ValidateTransactionForm(in)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Contains(t, fieldNames(t, err), "amount")
			}
		})
	}
}

func TestValidateTransactionForm_DescriptionBoundaries(t *testing.T) {
	tests := []struct {
		name string
		desc string
		ok   bool
	}{
		{"1 char", "a", false},
		{"2 chars", "ab", true},
		{"200 chars", strings.Repeat("x", 200), true},
		{"201 chars", strings.Repeat("x", 201), false},
		{"200 multibyte", strings.Repeat("é", 200), true},
		{"whitespace padded", "   a   ", false},
		{"200 chars padded", "  " + strings.Repeat("x", 200) + "  ", true},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validIncomeInput()
			in.Description = tt.desc
			_, err := ValidateTransactionForm(in)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Contains(t, fieldNames(t, err), "description")
			}
		})
	}
}

func TestValidateTransactionForm_Date(t *testing.T) {
	for _, date := range []string{"2025-13-01", "2025-02-30", "12/04/2025", "2025-4-1", ""} {
		t.Run(date, func(t *testing.T) {
			in := validIncomeInput()
			in.Date = date
			_, err := ValidateTransactionForm(in)
			assert.Contains(t, fieldNames(t, err), "date")
		})
	}
}

func TestValidateTransactionForm_CategoryMustMatchType(t *testing.T) {
	in := validIncomeInput()
	in.Category = "loan"

	_, err := ValidateTransactionForm(in)
	assert.Equal(t, []string{"category"}, fieldNames(t, err))

	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Contains(t, appErr.Fields[0].Message, "donation, reimbursement, other_income")
}

func TestValidateTransactionForm_UnknownType(t *testing.T) {
	in := validIncomeInput()
	in.Type = "transfer"

	_, err := ValidateTransactionForm(in)
	assert.Contains(t, fieldNames(t, err), "type")
}

func TestValidateTransactionForm_ExpenseRecipientRules(t *testing.T) {
	base := TransactionFormInput{
		Date:        "2025-04-12",
		Amount:      "5000",
		Type:        "expense",
		Category:    "loan",
		Description: "Loan",
	}

	t.Run("recipient type required", func(t *testing.T) {
		_, err := ValidateTransactionForm(base)
		assert.Equal(t, []string{"recipient_type"}, fieldNames(t, err))
	})

	t.Run("member needs id", func(t *testing.T) {
		in := base
		in.RecipientType = RecipientTypeMember
		_, err := ValidateTransactionForm(in)
		assert.Equal(t, []string{"recipient_id"}, fieldNames(t, err))
	})

	t.Run("member id must be uuid", func(t *testing.T) {
		in := base
		in.RecipientType = RecipientTypeMember
		in.RecipientID = "M1"
		_, err := ValidateTransactionForm(in)
		assert.Equal(t, []string{"recipient_id"}, fieldNames(t, err))
	})

	t.Run("other with name", func(t *testing.T) {
		in := base
		in.RecipientType = RecipientTypeOther
		in.RecipientName = "Hardware store"
		_, err := ValidateTransactionForm(in)
		assert.NoError(t, err)
	})

	t.Run("recipient name too long", func(t *testing.T) {
		in := base
		in.RecipientType = RecipientTypeOther
		in.RecipientName = strings.Repeat("n", 101)
		_, err := ValidateTransactionForm(in)
		assert.Equal(t, []string{"recipient_name"}, fieldNames(t, err))
	})

	t.Run("income ignores recipient type", func(t *testing.T) {
		in := validIncomeInput()
		in.RecipientType = "nonsense"
		_, err := ValidateTransactionForm(in)
		assert.NoError(t, err)
	})
}

func TestValidateTransactionForm_ReportsAllFields(t *testing.T) {
	_, err := ValidateTransactionForm(TransactionFormInput{})
	names := fieldNames(t, err)

	for _, f := range []string{"date", "amount", "type", "category", "description"} {
		assert.Contains(t, names, f)
	}
}

// ==================== Recipient resolution ====================

func TestResolveRecipient(t *testing.T) {
	alice := uuid.New()
	members := domain.MemberDirectory{{ID: alice, FullName: "Alice"}}

	tests := []struct {
		name string
		in   TransactionFormInput
		want string
	}{
		{"expense to member", TransactionFormInput{Type: "expense", RecipientType: "member", RecipientID: alice.String()}, "Alice"},
		{"expense to unknown member", TransactionFormInput{Type: "expense", RecipientType: "member", RecipientID: uuid.NewString()}, ""},
		{"expense to other", TransactionFormInput{Type: "expense", RecipientType: "other", RecipientName: "  Bakery "}, "  Bakery "},
		{"income never has recipient", TransactionFormInput{Type: "income", RecipientType: "other", RecipientName: "Bakery"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveRecipient(tt.in, members))
		})
	}
}

// ==================== Submit ====================

func TestTransactionForm_Submit_ResolvesMemberRecipient(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	creator := mocks.NewMockTransactionCreator(ctrl)
	actor := uuid.New()
	m1 := uuid.New()
	members := domain.MemberDirectory{{ID: m1, FullName: "Alice"}, {ID: uuid.New(), FullName: "Bob"}}

	form := NewTransactionForm(creator, actor, newTestLogger())
	var notified *domain.Transaction
	form.OnSuccess = func(tx *domain.Transaction) { notified = tx }

	creator.EXPECT().CreateTransaction(gomock.Any(), gomock.Any(), actor).DoAndReturn(
		func(_ context.Context, nt domain.NewTransaction, actorID uuid.UUID) (*domain.Transaction, error) {
			assert.Equal(t, "Alice", nt.Recipient)
			assert.True(t, nt.Amount.Equal(dec("5000")))
			assert.Equal(t, domain.CategoryLoan, nt.Category)
			return &domain.Transaction{ID: uuid.New(), Recipient: nt.Recipient, CreatedBy: actorID}, nil
		},
	)

	tx, err := form.Submit(context.Background(), TransactionFormInput{
		Date:          "2025-04-12",
		Amount:        "5000",
		Type:          "expense",
		Category:      "loan",
		Description:   "Loan to Alice",
		RecipientType: RecipientTypeMember,
		RecipientID:   m1.String(),
	}, members)

	require.NoError(t, err)
	assert.Equal(t, "Alice", tx.Recipient)
	assert.Same(t, tx, notified)
	assert.True(t, form.Submitting(), "successful form stays closed")
	assert.Empty(t, form.LastError())
}

func TestTransactionForm_Submit_ValidationSkipsCreator(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	creator := mocks.NewMockTransactionCreator(ctrl)
	form := NewTransactionForm(creator, uuid.New(), newTestLogger())

	in := validIncomeInput()
	in.Amount = "0"

	_, err := form.Submit(context.Background(), in, nil)
	assert.True(t, apperror.IsValidation(err))
	assert.False(t, form.Submitting())
}

func TestTransactionForm_Submit_FailureReopensForm(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	creator := mocks.NewMockTransactionCreator(ctrl)
	form := NewTransactionForm(creator, uuid.New(), newTestLogger())
	called := false
	form.OnSuccess = func(*domain.Transaction) { called = true }

	cause := errors.New("insert transaction: connection refused")
	creator.EXPECT().CreateTransaction(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, apperror.QueryError(cause))
	creator.EXPECT().CreateTransaction(gomock.Any(), gomock.Any(), gomock.Any()).Return(&domain.Transaction{ID: uuid.New()}, nil)

	_, err := form.Submit(context.Background(), validIncomeInput(), nil)
	require.Error(t, err)
	assert.False(t, form.Submitting())
	assert.Equal(t, cause.Error(), form.LastError())
	assert.False(t, called)

	_, err = form.Submit(context.Background(), validIncomeInput(), nil)
	require.NoError(t, err)
	assert.Empty(t, form.LastError())
	assert.True(t, called)
}

func TestTransactionForm_Submit_RejectsWhileInFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	creator := mocks.NewMockTransactionCreator(ctrl)
	form := NewTransactionForm(creator, uuid.New(), newTestLogger())

	entered := make(chan struct{})
	release := make(chan struct{})
	creator.EXPECT().CreateTransaction(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, domain.NewTransaction, uuid.UUID) (*domain.Transaction, error) {
			close(entered)
			<-release
			return nil, errors.New("boom")
		},
	)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = form.Submit(context.Background(), validIncomeInput(), nil)
	}()

	<-entered
	_, err := form.Submit(context.Background(), validIncomeInput(), nil)
	var appErr *apperror.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.CodeSubmitInProgress, appErr.Code)

	close(release)
	wg.Wait()
	assert.False(t, form.Submitting())
}

func TestTransactionForms_NewFormAfterSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	creator := mocks.NewMockTransactionCreator(ctrl)
	forms := NewTransactionForms(creator, newTestLogger())
	actor := uuid.New()

	creator.EXPECT().CreateTransaction(gomock.Any(), gomock.Any(), actor).
		Return(&domain.Transaction{ID: uuid.New()}, nil).Times(2)

	_, err := forms.Submit(context.Background(), actor, validIncomeInput(), nil)
	require.NoError(t, err)
	_, err = forms.Submit(context.Background(), actor, validIncomeInput(), nil)
	require.NoError(t, err)
}

func TestTransactionForms_ActorsAreIndependent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	creator := mocks.NewMockTransactionCreator(ctrl)
	forms := NewTransactionForms(creator, newTestLogger())
	slow, fast := uuid.New(), uuid.New()

	entered := make(chan struct{})
	release := make(chan struct{})
	creator.EXPECT().CreateTransaction(gomock.Any(), gomock.Any(), slow).DoAndReturn(
		func(context.Context, domain.NewTransaction, uuid.UUID) (*domain.Transaction, error) {
			close(entered)
			<-release
			return &domain.Transaction{ID: uuid.New()}, nil
		},
	)
	creator.EXPECT().CreateTransaction(gomock.Any(), gomock.Any(), fast).Return(&domain.Transaction{ID: uuid.New()}, nil)

	done := make(chan error, 1)
	go func() {
		_, err := forms.Submit(context.Background(), slow, validIncomeInput(), nil)
		done <- err
	}()
	<-entered

	_, err := forms.Submit(context.Background(), slow, validIncomeInput(), nil)
	assert.Error(t, err, "same actor is blocked")

	_, err = forms.Submit(context.Background(), fast, validIncomeInput(), nil)
	assert.NoError(t, err, "other actors are not")

	close(release)
	assert.NoError(t, <-done)
}
