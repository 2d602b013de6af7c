package account

import (
	"context"
	"fmt"
	"strings"

	"github.com/amirasaad/atm/pkg/domain"
	"github.com/amirasaad/atm/pkg/domain/account"
	"github.com/amirasaad/atm/pkg/domain/events"
	"github.com/amirasaad/atm/pkg/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// parsePositive parses a user-supplied amount and requires it to be > 0.
func parsePositive(raw string) (decimal.Decimal, error) {
	amount, err := account.ParseAmount(raw)
	if err != nil {
		return decimal.Zero, errInvalidAmount
	}
	if !amount.IsPositive() {
		return decimal.Zero, errAmountNotPositive
	}
	return amount, nil
}

// Deposit credits the session's account with amount.
func (s *Service) Deposit(ctx context.Context, sid uuid.UUID, amount string) (Result, error) {
	log := s.logger.With("context", "Deposit", "session", sid)
	log.Debug("Deposit started", "amount", amount)

	var evts []events.Event
	defer func() { s.publish(ctx, evts...) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	username, err := s.session(sid)
	if err != nil {
		log.Warn("Deposit failed: no session")
		return Result{}, err
	}
	log = log.With("username", username)

	value, err := parsePositive(amount)
	if err != nil {
		log.Warn("Deposit failed: invalid amount", "error", err)
		return Result{}, err
	}
	if value.GreaterThan(s.opts.MaxDeposit) {
		log.Warn("Deposit failed: above ceiling", "amount", value)
		return Result{}, domain.NewError(domain.ErrValidation,
			fmt.Sprintf("Deposit exceeds max of %s.", s.money(s.opts.MaxDeposit)))
	}

	at := s.now()
	ws := s.begin()
	a := ws.edit(username)
	a.Credit(value, account.NewDeposit(value, at))
	if err := s.commit(ctx, ws, log); err != nil {
		return Result{}, err
	}

	log.Info("Deposit successful", "amount", value, "balance", a.Balance)
	evts = append(evts, events.FundsDeposited{Meta: meta(username, at), Amount: value, Balance: a.Balance})
	return Result{
		Message: fmt.Sprintf(msgDeposited, s.money(value), s.money(a.Balance)),
		Balance: a.Balance,
	}, nil
}

// Withdraw debits the session's account after checking the PIN and the
// balance.
func (s *Service) Withdraw(ctx context.Context, sid uuid.UUID, amount, pin string) (Result, error) {
	log := s.logger.With("context", "Withdraw", "session", sid)
	log.Debug("Withdraw started", "amount", amount)

	var evts []events.Event
	defer func() { s.publish(ctx, evts...) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	username, err := s.session(sid)
	if err != nil {
		log.Warn("Withdraw failed: no session")
		return Result{}, err
	}
	log = log.With("username", username)

	value, err := parsePositive(amount)
	if err != nil {
		log.Warn("Withdraw failed: invalid amount", "error", err)
		return Result{}, err
	}
	current := s.accounts[username]
	if !utils.CheckSecretHash(pin, current.PinHash) {
		log.Warn("Withdraw failed: incorrect PIN")
		return Result{}, errIncorrectPIN
	}
	if !current.CanDebit(value) {
		log.Warn("Withdraw failed: insufficient funds", "amount", value)
		return Result{}, errInsufficientFunds
	}

	at := s.now()
	ws := s.begin()
	a := ws.edit(username)
	a.Debit(value, account.NewWithdraw(value, at))
	if err := s.commit(ctx, ws, log); err != nil {
		return Result{}, err
	}

	log.Info("Withdraw successful", "amount", value, "balance", a.Balance)
	evts = append(evts, events.FundsWithdrawn{Meta: meta(username, at), Amount: value, Balance: a.Balance})
	return Result{
		Message: fmt.Sprintf(msgWithdrew, s.money(value), s.money(a.Balance)),
		Balance: a.Balance,
	}, nil
}

// Transfer moves amount from the session's account to toUsername. Both
// legs carry the same timestamp and are persisted in a single save.
func (s *Service) Transfer(ctx context.Context, sid uuid.UUID, toUsername, amount, pin string) (Result, error) {
	toUsername = strings.TrimSpace(toUsername)
	log := s.logger.With("context", "Transfer", "session", sid, "to", toUsername)
	log.Debug("Transfer started", "amount", amount)

	var evts []events.Event
	defer func() { s.publish(ctx, evts...) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	username, err := s.session(sid)
	if err != nil {
		log.Warn("Transfer failed: no session")
		return Result{}, err
	}
	log = log.With("username", username)

	if _, ok := s.accounts[toUsername]; !ok {
		log.Warn("Transfer failed: recipient not found")
		return Result{}, errRecipientNotFound
	}
	if toUsername == username {
		log.Warn("Transfer failed: self transfer")
		return Result{}, errSelfTransfer
	}
	value, err := parsePositive(amount)
	if err != nil {
		log.Warn("Transfer failed: invalid amount", "error", err)
		return Result{}, err
	}
	current := s.accounts[username]
	if !utils.CheckSecretHash(pin, current.PinHash) {
		log.Warn("Transfer failed: incorrect PIN")
		return Result{}, errIncorrectPIN
	}
	if !current.CanDebit(value) {
		log.Warn("Transfer failed: insufficient funds", "amount", value)
		return Result{}, errInsufficientFunds
	}

	at := s.now()
	out, in := account.NewTransferPair(username, toUsername, value, at)
	ws := s.begin()
	sender := ws.edit(username)
	sender.Debit(value, out)
	ws.edit(toUsername).Credit(value, in)
	if err := s.commit(ctx, ws, log); err != nil {
		return Result{}, err
	}

	log.Info("Transfer successful", "amount", value, "balance", sender.Balance)
	evts = append(evts, events.FundsTransferred{Meta: meta(username, at), To: toUsername, Amount: value, Balance: sender.Balance})
	return Result{
		Message: fmt.Sprintf(msgTransferred, s.money(value), toUsername, s.money(sender.Balance)),
		Balance: sender.Balance,
	}, nil
}
