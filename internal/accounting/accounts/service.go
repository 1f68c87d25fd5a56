package accounts

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/odyssey-erp/odyssey-books/internal/shared"
)

// ChangeFunc is called after a committed change to an account.
type ChangeFunc func(ctx context.Context, account Account)

// Service manages the chart of accounts.
type Service struct {
	repo      Repository
	audit     shared.AuditTrail
	observers []ChangeFunc
}

// NewService constructs the service; audit may be nil.
func NewService(repo Repository, audit shared.AuditPort, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: shared.NewAuditTrail(audit, logger)}
}

// Observe registers fn to run after every committed create or update.
func (s *Service) Observe(fn ChangeFunc) {
	s.observers = append(s.observers, fn)
}

func (s *Service) List(ctx context.Context) ([]Account, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByCode(ctx context.Context, code string) (Account, error) {
	return s.repo.GetByCode(ctx, strings.TrimSpace(code))
}

// Create inserts a new account. The parent, when given, must share the account type.
func (s *Service) Create(ctx context.Context, in CreateInput) (Account, error) {
	account, err := s.prepare(in)
	if err != nil {
		return Account{}, err
	}
	var created Account
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if in.ParentCode != "" {
			parent, err := tx.GetAccountByCode(ctx, strings.TrimSpace(in.ParentCode))
			if err != nil {
				return err
			}
			if parent.Type != account.Type {
				return shared.Invalid("parent_code", "must have the same account type")
			}
			account.ParentID = &parent.ID
		}
		inserted, err := tx.InsertAccount(ctx, account)
		if err != nil {
			return err
		}
		created = inserted
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	s.changed(ctx, "account.create", created)
	return created, nil
}

func (s *Service) prepare(in CreateInput) (Account, error) {
	code := strings.TrimSpace(in.Code)
	if code == "" {
		return Account{}, shared.Invalid("code", "is required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Account{}, shared.Invalid("name", "is required")
	}
	if !in.Type.Valid() {
		return Account{}, shared.Invalid("type", "must be one of ASSET, LIABILITY, EQUITY, REVENUE, EXPENSE")
	}
	category, err := resolveCategory(in.Type, code, in.ExpenseCategory)
	if err != nil {
		return Account{}, err
	}
	return Account{Code: code, Name: name, Type: in.Type, ExpenseCategory: category, IsActive: true}, nil
}

func resolveCategory(t AccountType, code string, requested ExpenseCategory) (ExpenseCategory, error) {
	switch {
	case t != AccountTypeExpense && requested != ExpenseCategoryNone:
		return "", shared.Invalid("expense_category", "only applies to expense accounts")
	case t != AccountTypeExpense:
		return ExpenseCategoryNone, nil
	case requested == ExpenseCategoryNone:
		return DefaultExpenseCategory(t, code), nil
	case requested == ExpenseCategoryCOGS || requested == ExpenseCategoryOperating:
		return requested, nil
	default:
		return "", shared.Invalid("expense_category", "must be COGS or OPERATING")
	}
}

// Update changes mutable attributes. The type of an account is frozen once lines
// or child accounts exist against it, and an account with lines cannot be deactivated.
func (s *Service) Update(ctx context.Context, code string, in UpdateInput) (Account, error) {
	var updated Account
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetAccountByCode(ctx, strings.TrimSpace(code))
		if err != nil {
			return err
		}
		next := current
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return shared.Invalid("name", "is required")
			}
			next.Name = name
		}
		if in.Type != nil {
			if !in.Type.Valid() {
				return shared.Invalid("type", "must be one of ASSET, LIABILITY, EQUITY, REVENUE, EXPENSE")
			}
			next.Type = *in.Type
		}
		if in.IsActive != nil {
			next.IsActive = *in.IsActive
		}
		requested := ExpenseCategoryNone
		if in.ExpenseCategory != nil {
			requested = *in.ExpenseCategory
		} else if next.Type == current.Type {
			requested = current.ExpenseCategory
		}
		if next.ExpenseCategory, err = resolveCategory(next.Type, next.Code, requested); err != nil {
			return err
		}
		if next.Type != current.Type || (current.IsActive && !next.IsActive) {
			used, err := tx.AccountHasLines(ctx, current.ID)
			if err != nil {
				return err
			}
			if used && next.Type != current.Type {
				return shared.InvalidState("account %s has posted lines; its type cannot change", current.Code)
			}
			if used && !next.IsActive {
				return shared.InvalidState("account %s has posted lines; it cannot be deactivated", current.Code)
			}
		}
		if next.Type != current.Type {
			hasChildren, err := tx.AccountHasChildren(ctx, current.ID)
			if err != nil {
				return err
			}
			if hasChildren {
				return shared.InvalidState("account %s has child accounts; its type cannot change", current.Code)
			}
		}
		if in.ParentCode != nil {
			if err := assignParent(ctx, tx, &next, strings.TrimSpace(*in.ParentCode)); err != nil {
				return err
			}
		} else if next.ParentID != nil && next.Type != current.Type {
			return shared.Invalid("type", "differs from the parent account type")
		}
		if err := tx.UpdateAccount(ctx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return Account{}, err
	}
	s.changed(ctx, "account.update", updated)
	return updated, nil
}

func assignParent(ctx context.Context, tx TxRepository, account *Account, parentCode string) error {
	if parentCode == "" {
		account.ParentID = nil
		return nil
	}
	parent, err := tx.GetAccountByCode(ctx, parentCode)
	if err != nil {
		return err
	}
	if parent.Type != account.Type {
		return shared.Invalid("parent_code", "must have the same account type")
	}
	// walk up the tree to refuse cycles
	for cursor := parent; ; {
		if cursor.ID == account.ID {
			return shared.Invalid("parent_code", "would create a cycle")
		}
		if cursor.ParentID == nil {
			break
		}
		next, err := tx.GetAccount(ctx, *cursor.ParentID)
		if err != nil {
			return err
		}
		cursor = next
	}
	account.ParentID = &parent.ID
	return nil
}

// EnsureDefaults inserts DefaultChart, treating existing codes as already present.
// It returns the number of accounts created.
func (s *Service) EnsureDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, def := range DefaultChart {
		_, err := s.Create(ctx, CreateInput{Code: def.Code, Name: def.Name, Type: def.Type, ParentCode: def.ParentCode})
		switch {
		case err == nil:
			created++
		case errors.Is(err, shared.ErrDuplicateKey):
		default:
			return created, err
		}
	}
	return created, nil
}

// ResolveChart maps the well-known codes to ids. A missing code is a configuration error.
func (s *Service) ResolveChart(ctx context.Context) (Chart, error) {
	var chart Chart
	for _, target := range chart.targets() {
		account, err := s.repo.GetByCode(ctx, target.code)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return Chart{}, shared.ConfigurationMissing("account code " + target.code)
			}
			return Chart{}, err
		}
		*target.id = account.ID
	}
	return chart, nil
}

func (s *Service) changed(ctx context.Context, action string, a Account) {
	s.audit.Record(ctx, shared.AuditLog{
		Action:   action,
		Entity:   "account",
		EntityID: a.Code,
		Meta:     map[string]any{"type": a.Type, "active": a.IsActive},
	})
	for _, fn := range s.observers {
		fn(ctx, a)
	}
}
