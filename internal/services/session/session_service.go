package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/DeWolfRobin/tf2autobot/internal/models"
	"github.com/DeWolfRobin/tf2autobot/internal/pricer"
	priceService "github.com/DeWolfRobin/tf2autobot/internal/services/price"
	"github.com/DeWolfRobin/tf2autobot/internal/steam"
)

const (
	priceCommand   = "!price"
	handlerTimeout = 10 * time.Second
)

var ErrNoPassword = errors.New("no password and no stored login key")

// CodeProvider supplies Steam Guard codes. domain is empty when a mobile
// authenticator code is expected.
type CodeProvider func(ctx context.Context, domain string, lastCodeWrong bool) (string, error)

// PriceLookup is the part of the price store chat commands read from.
type PriceLookup interface {
	GetPrice(ctx context.Context, sku string) (pricer.Item, error)
}

type Options struct {
	AccountName   string
	Password      string
	AcceptFriends bool
	PersonaName   string
	Games         []uint32
}

type SessionService struct {
	client steam.Client
	db     *gorm.DB
	prices PriceLookup
	codes  CodeProvider
	opts   Options
	log    logrus.FieldLogger

	mu   sync.Mutex
	subs []*steam.Subscription
}

func NewSessionService(client steam.Client, db *gorm.DB, prices PriceLookup, codes CodeProvider, opts Options, logger logrus.FieldLogger) *SessionService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SessionService{
		client: client,
		db:     db,
		prices: prices,
		codes:  codes,
		opts:   opts,
		log:    logger.WithFields(logrus.Fields{"component": "session-service", "account": opts.AccountName}),
	}
}

// Start registers the event handlers and logs on, preferring a stored
// login key over the configured password.
func (s *SessionService) Start(ctx context.Context) error {
	details := steam.LogOnDetails{
		AccountName:      s.opts.AccountName,
		Password:         s.opts.Password,
		RememberPassword: true,
	}

	key, err := s.LoginKey(ctx)
	if err != nil {
		return err
	}
	if key != "" {
		details.LoginKey = key
		details.Password = ""
	}
	if details.Password == "" && details.LoginKey == "" {
		return ErrNoPassword
	}

	s.subscribe()
	if err := s.client.LogOn(details); err != nil {
		s.cancel()
		return fmt.Errorf("log on %s: %w", s.opts.AccountName, err)
	}
	return nil
}

// Stop removes the handlers and logs off.
func (s *SessionService) Stop() {
	s.cancel()
	err := s.client.LogOff()
	if err != nil && !errors.Is(err, steam.ErrNotLoggedOn) {
		s.log.WithError(err).Warn("Log off failed")
	}
}

// LoginKey returns the stored login key for the account, or "" if none.
func (s *SessionService) LoginKey(ctx context.Context) (string, error) {
	var key models.LoginKey
	err := s.db.WithContext(ctx).Where("account_name = ?", s.opts.AccountName).First(&key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load login key: %w", err)
	}
	return key.Key, nil
}

func (s *SessionService) subscribe() {
	bus := s.client.Events()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs,
		bus.OnLoggedOn(s.onLoggedOn),
		bus.OnWebSession(s.onWebSession),
		bus.OnAccountLimitations(s.onAccountLimitations),
		bus.OnFriendMessage(s.onFriendMessage),
		bus.OnFriendRelationship(s.onFriendRelationship),
		bus.OnGroupRelationship(s.onGroupRelationship),
		bus.OnSteamGuard(s.onSteamGuard),
		bus.OnLoginKey(s.onLoginKey),
		bus.OnError(s.onError),
	)
}

func (s *SessionService) cancel() {
	s.mu.Lock()
	subs := s.subs
	s.subs = nil
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Cancel()
	}
}

func (s *SessionService) onLoggedOn(steam.LoggedOn) {
	s.log.WithField("steamid", s.client.SteamID().String()).Info("Logged on to Steam")

	if err := s.client.SetPersona(steam.PersonaOnline, s.opts.PersonaName); err != nil {
		s.log.WithError(err).Warn("Failed to set persona")
	}
	if len(s.opts.Games) > 0 {
		if err := s.client.GamesPlayed(s.opts.Games, false); err != nil {
			s.log.WithError(err).Warn("Failed to set games played")
		}
	}
	if err := s.client.WebLogOn(); err != nil {
		s.log.WithError(err).Error("Web logon failed")
	}
}

func (s *SessionService) onWebSession(e steam.WebSession) {
	s.log.WithField("cookies", len(e.Cookies)).Info("Web session established")
}

func (s *SessionService) onAccountLimitations(e steam.AccountLimitations) {
	entry := s.log.WithFields(logrus.Fields{
		"limited":            e.Limited,
		"community_banned":   e.CommunityBanned,
		"locked":             e.Locked,
		"can_invite_friends": e.CanInviteFriends,
	})
	if e.Limited || e.CommunityBanned || e.Locked {
		entry.Warn("Account is limited")
		return
	}
	entry.Debug("Account limitations received")
}

func (s *SessionService) onSteamGuard(e steam.SteamGuard) {
	entry := s.log.WithFields(logrus.Fields{"domain": e.Domain, "last_code_wrong": e.LastCodeWrong})
	if s.codes == nil {
		entry.Error("Steam Guard code requested but no code provider is configured")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	code, err := s.codes(ctx, e.Domain, e.LastCodeWrong)
	if err != nil {
		entry.WithError(err).Error("Failed to obtain Steam Guard code")
		return
	}
	entry.Info("Submitting Steam Guard code")
	e.Respond(code)
}

func (s *SessionService) onLoginKey(e steam.LoginKey) {
	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	key := models.LoginKey{AccountName: s.opts.AccountName, Key: e.Key}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"key", "updated_at"}),
	}).Create(&key).Error
	if err != nil {
		s.log.WithError(err).Error("Failed to store login key")
		return
	}
	s.log.Debug("Login key stored")
}

func (s *SessionService) onFriendRelationship(e steam.FriendRelationship) {
	entry := s.log.WithFields(logrus.Fields{
		"steamid":      e.SteamID.String(),
		"relationship": e.Relationship.String(),
	})
	entry.Info("Friend relationship changed")

	if e.Relationship != steam.FriendRelationshipRequestRecipient || !s.opts.AcceptFriends {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	name, err := s.client.AddFriend(ctx, e.SteamID)
	if err != nil {
		entry.WithError(err).Warn("Failed to accept friend request")
		return
	}
	entry.WithField("name", name).Info("Accepted friend request")
}

// Group invites are declined; the bot does not join groups on its own.
func (s *SessionService) onGroupRelationship(e steam.GroupRelationship) {
	if e.Relationship != steam.ClanRelationshipInvited {
		return
	}
	entry := s.log.WithField("group", e.GroupID.String())
	if err := s.client.RespondToGroupInvite(e.GroupID, false); err != nil {
		entry.WithError(err).Warn("Failed to decline group invite")
		return
	}
	entry.Info("Declined group invite")
}

func (s *SessionService) onFriendMessage(e steam.FriendMessage) {
	sku, ok := parsePriceCommand(e.Message)
	if !ok {
		return
	}

	reply := s.priceReply(sku)
	if err := s.client.ChatMessage(e.Sender, reply); err != nil {
		s.log.WithError(err).WithField("steamid", e.Sender.String()).Warn("Failed to send reply")
	}
}

func (s *SessionService) onError(e steam.ErrorEvent) {
	s.log.WithError(e.Err).Error("Steam session failed")
}

func (s *SessionService) priceReply(sku string) string {
	if sku == "" {
		return "Usage: !price <sku>"
	}
	if s.prices == nil {
		return "Prices are not available right now."
	}

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()
	item, err := s.prices.GetPrice(ctx, sku)
	if err != nil {
		if !errors.Is(err, priceService.ErrPriceNotFound) {
			s.log.WithError(err).WithField("sku", sku).Error("Price lookup failed")
		}
		return fmt.Sprintf("I don't have a price for %s.", sku)
	}
	return formatPrice(item)
}

func parsePriceCommand(message string) (string, bool) {
	fields := strings.Fields(message)
	if len(fields) == 0 || !strings.EqualFold(fields[0], priceCommand) {
		return "", false
	}
	return strings.Join(fields[1:], " "), true
}

func formatPrice(item pricer.Item) string {
	name := item.Name
	if name == "" {
		name = item.SKU
	}
	return fmt.Sprintf("%s: buying for %s, selling for %s", name, formatCurrencies(item.Buy), formatCurrencies(item.Sell))
}

func formatCurrencies(c *pricer.Currencies) string {
	if c == nil {
		return "n/a"
	}
	switch {
	case c.Keys == 0:
		return fmt.Sprintf("%g ref", c.Metal)
	case c.Metal == 0:
		return fmt.Sprintf("%g keys", c.Keys)
	}
	return fmt.Sprintf("%g keys, %g ref", c.Keys, c.Metal)
}
