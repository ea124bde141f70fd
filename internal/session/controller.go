// Package session tracks who is logged in to a browser session and which
// screen they are looking at.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"enterprise-portal/internal/catalogue"
	"enterprise-portal/internal/models"
	"enterprise-portal/internal/store"

	"go.uber.org/zap"
)

type State string

const (
	StateLoggedOut     State = "logged_out"
	StateIdle          State = "idle"
	StateViewing       State = "viewing"
	StateAdministering State = "administering"
)

func (s State) loggedIn() bool {
	return s == StateIdle || s == StateViewing || s == StateAdministering
}

// KeyPrefix namespaces session records in the durable slot.
const KeyPrefix = "portal_user"

func SlotKey(sid string) string {
	return KeyPrefix + ":" + sid
}

type Validator interface {
	Validate(email, password string) (models.User, error)
	Lookup(email string) (models.User, bool)
}

type Catalogue interface {
	List(ctx context.Context) ([]models.MenuItem, error)
	Get(ctx context.Context, id string) (models.MenuItem, error)
}

type Deps struct {
	Slot       store.Store
	Validator  Validator
	Catalogue  Catalogue
	LoginDelay time.Duration
	Logger     *zap.Logger
}

// Record is the persisted form of a session.
type Record struct {
	User   models.User `json:"user"`
	State  State       `json:"state"`
	ItemID string      `json:"itemId,omitempty"`
}

// Screen is what the presentation layer renders for the current state.
type Screen struct {
	State   State             `json:"state"`
	User    *models.User      `json:"user,omitempty"`
	Menu    []models.MenuItem `json:"menu,omitempty"`
	Item    *models.MenuItem  `json:"item,omitempty"`
	IsAdmin bool              `json:"isAdmin"`
}

// Controller is not safe for concurrent use; Manager serialises access per
// session.
type Controller struct {
	sid    string
	deps   Deps
	logger *zap.Logger

	state  State
	user   models.User
	itemID string
}

func NewController(sid string, deps Deps) *Controller {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		sid:    sid,
		deps:   deps,
		logger: logger.With(zap.String("sid", sid)),
		state:  StateLoggedOut,
	}
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) User() (models.User, bool) {
	if !c.state.loggedIn() {
		return models.User{}, false
	}
	return c.user, true
}

// Rehydrate restores the session from its durable record. A record whose
// user is no longer in the credential table is discarded.
func (c *Controller) Rehydrate(ctx context.Context) error {
	c.reset()
	if c.deps.Slot == nil {
		return nil
	}
	raw, err := c.deps.Slot.Get(ctx, SlotKey(c.sid))
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			c.logger.Warn("session storage unavailable", zap.Error(err))
			return nil
		}
		return err
	}

	var record Record
	if err := json.Unmarshal(raw, &record); err != nil {
		c.logger.Warn("discarding corrupt session record", zap.Error(err))
		c.clear(ctx)
		return nil
	}
	user, ok := c.deps.Validator.Lookup(record.User.Email)
	if !ok {
		c.logger.Info("discarding session of unknown user", zap.String("email", record.User.Email))
		c.clear(ctx)
		return nil
	}

	c.user = user
	c.state = record.State
	c.itemID = record.ItemID
	switch {
	case !c.state.loggedIn():
		c.state = StateIdle
		c.itemID = ""
	case c.state == StateAdministering && !user.IsAdmin():
		c.state = StateIdle
	case c.state == StateViewing && c.itemID == "":
		c.state = StateIdle
	}
	return nil
}

func (c *Controller) Login(ctx context.Context, email, password string) (models.User, error) {
	if c.deps.LoginDelay > 0 {
		timer := time.NewTimer(c.deps.LoginDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return models.User{}, ctx.Err()
		case <-timer.C:
		}
	}

	user, err := c.deps.Validator.Validate(email, password)
	if err != nil {
		c.logger.Info("login rejected", zap.String("email", models.NormalizeEmail(email)))
		return models.User{}, err
	}
	c.user = user
	c.state = StateIdle
	c.itemID = ""
	c.persist(ctx)
	c.logger.Info("login", zap.String("email", user.Email), zap.String("role", string(user.Role)))
	return user, nil
}

func (c *Controller) Logout(ctx context.Context) {
	if c.state.loggedIn() {
		c.logger.Info("logout", zap.String("email", c.user.Email))
	}
	c.reset()
	c.clear(ctx)
}

func (c *Controller) SelectItem(ctx context.Context, id string) error {
	if !c.state.loggedIn() {
		return ErrNotLoggedIn
	}
	if _, err := c.deps.Catalogue.Get(ctx, id); err != nil {
		return err
	}
	c.state = StateViewing
	c.itemID = id
	c.persist(ctx)
	return nil
}

func (c *Controller) OpenAdmin(ctx context.Context) error {
	if !c.state.loggedIn() {
		return ErrNotLoggedIn
	}
	if !c.user.IsAdmin() {
		return ErrForbidden
	}
	c.state = StateAdministering
	c.itemID = ""
	c.persist(ctx)
	return nil
}

func (c *Controller) Home(ctx context.Context) error {
	if !c.state.loggedIn() {
		return ErrNotLoggedIn
	}
	c.state = StateIdle
	c.itemID = ""
	c.persist(ctx)
	return nil
}

// View snapshots the current screen. The menu and the selected item are
// read from the catalogue on every call; a selected item that has since
// been deleted sends the session back to Idle.
func (c *Controller) View(ctx context.Context) (Screen, error) {
	if !c.state.loggedIn() {
		return Screen{State: StateLoggedOut}, nil
	}

	menu, err := c.deps.Catalogue.List(ctx)
	if err != nil {
		return Screen{}, err
	}
	screen := Screen{
		State:   c.state,
		User:    &c.user,
		Menu:    menu,
		IsAdmin: c.user.IsAdmin(),
	}

	if c.state == StateViewing {
		item, err := c.deps.Catalogue.Get(ctx, c.itemID)
		switch {
		case errors.Is(err, catalogue.ErrItemNotFound):
			c.logger.Info("selected item no longer exists", zap.String("item_id", c.itemID))
			c.state = StateIdle
			c.itemID = ""
			c.persist(ctx)
			screen.State = StateIdle
		case err != nil:
			return Screen{}, err
		default:
			screen.Item = &item
		}
	}

	if !screen.IsAdmin {
		for i := range screen.Menu {
			screen.Menu[i] = screen.Menu[i].Redacted()
		}
		if screen.Item != nil {
			redacted := screen.Item.Redacted()
			screen.Item = &redacted
		}
	}
	return screen, nil
}

func (c *Controller) reset() {
	c.state = StateLoggedOut
	c.user = models.User{}
	c.itemID = ""
}

// persist mirrors the session into the slot. Failures are logged and the
// in-memory state stays authoritative.
func (c *Controller) persist(ctx context.Context) {
	if c.deps.Slot == nil {
		return
	}
	raw, err := json.Marshal(Record{User: c.user, State: c.state, ItemID: c.itemID})
	if err != nil {
		c.logger.Error("encode session record", zap.Error(err))
		return
	}
	if err := c.deps.Slot.Put(ctx, SlotKey(c.sid), raw); err != nil {
		c.logger.Warn("persist session record", zap.Error(err))
	}
}

func (c *Controller) clear(ctx context.Context) {
	if c.deps.Slot == nil {
		return
	}
	if err := c.deps.Slot.Delete(ctx, SlotKey(c.sid)); err != nil && !errors.Is(err, store.ErrNotFound) {
		c.logger.Warn("clear session record", zap.Error(err))
	}
}
