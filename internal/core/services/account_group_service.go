package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/SscSPs/acquire_ledger/internal/apperrors"
	"github.com/SscSPs/acquire_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/acquire_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/acquire_ledger/internal/core/ports/services"
	"github.com/SscSPs/acquire_ledger/internal/dto"
	"github.com/SscSPs/acquire_ledger/internal/mutex"
)

// DefaultAccountGroup is used when a request names no group.
const DefaultAccountGroup = "main"

type accountGroupService struct {
	BaseService
	groupRepo portsrepo.AccountGroupRepositoryFacade
	accounts  portssvc.AccountSvcFacade
	locker    portsrepo.Locker
	lockOpts  portsrepo.LockOptions
}

func NewAccountGroupService(repo portsrepo.AccountGroupRepositoryFacade, accounts portssvc.AccountSvcFacade, locker portsrepo.Locker) portssvc.AccountGroupSvc {
	return &accountGroupService{
		BaseService: newBaseService(),
		groupRepo:   repo,
		accounts:    accounts,
		locker:      locker,
		lockOpts:    mutex.DefaultOptions,
	}
}

var _ portssvc.AccountGroupSvc = (*accountGroupService)(nil)

func groupLockKey(group string) string { return "account_group/" + group }

// CreateAccount is idempotent per name: a second call returns the account
// created by the first.
func (s *accountGroupService) CreateAccount(ctx context.Context, group string, req dto.CreateAccountRequest, principal string) (domain.Account, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Account{}, fmt.Errorf("%w: account name is required", apperrors.ErrValidation)
	}
	req.Name = name

	var account domain.Account
	err := mutex.WithLock(ctx, s.locker, groupLockKey(group), s.lockOpts, func(ctx context.Context) error {
		uid, err := s.groupRepo.FindAccountUID(ctx, group, name)
		if err == nil {
			account, err = s.accounts.GetAccount(ctx, uid)
			return err
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}

		if account, err = s.accounts.CreateAccount(ctx, req, principal); err != nil {
			return err
		}
		return s.groupRepo.SaveAccountName(ctx, group, name, account.UID)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create account in group", slog.String("group", group), slog.String("name", name))
		return domain.Account{}, err
	}
	return account, nil
}

func (s *accountGroupService) GetAccount(ctx context.Context, group, name string) (domain.Account, error) {
	uid, err := s.groupRepo.FindAccountUID(ctx, group, name)
	if err != nil {
		return domain.Account{}, err
	}
	return s.accounts.GetAccount(ctx, uid)
}

func (s *accountGroupService) ListAccounts(ctx context.Context, group string) ([]string, error) {
	names, err := s.groupRepo.ListAccountNames(ctx, group)
	if err != nil {
		s.LogError(ctx, err, "Failed to list group accounts", slog.String("group", group))
		return nil, err
	}
	return names, nil
}

func (s *accountGroupService) Contains(ctx context.Context, group, accountUID string) (bool, error) {
	names, err := s.groupRepo.ListAccountNames(ctx, group)
	if err != nil {
		return false, err
	}
	for _, name := range names {
		uid, err := s.groupRepo.FindAccountUID(ctx, group, name)
		if err != nil {
			return false, err
		}
		if uid == accountUID {
			return true, nil
		}
	}
	return false, nil
}
