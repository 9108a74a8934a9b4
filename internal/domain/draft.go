package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// TimeFlexible is the time value used for open-time packages.
const TimeFlexible = "flexible"

const (
	MinGuests            = 1
	MaxPrivatePassengers = 10
	MaxNonPlayers        = 10
)

const DateLayout = "2006-01-02"

// TimeSlots are the bookable start times for timed packages.
var TimeSlots = []string{"08:00", "09:00", "10:00", "11:00", "12:00", "13:00", "14:00", "15:00", "16:00"}

func IsKnownTimeSlot(t string) bool {
	for _, s := range TimeSlots {
		if s == t {
			return true
		}
	}
	return false
}

type TransferKind string

const (
	TransferNone    TransferKind = "none"
	TransferShared  TransferKind = "shared"
	TransferPrivate TransferKind = "private"
)

// TransferMode is one of None, Shared{nonPlayers} or Private{passengers}.
// Fields are unexported so a non-player count and a private passenger count
// can never both be set.
type TransferMode struct {
	kind       TransferKind
	nonPlayers int
	passengers int
}

// NoTransfer means the customer arranges their own way to the park.
func NoTransfer() TransferMode { return TransferMode{kind: TransferNone} }

// SharedTransfer is hotel pickup in the shared van. Non-players riding along
// are billed per head.
func SharedTransfer(nonPlayers int) TransferMode {
	return TransferMode{kind: TransferShared, nonPlayers: clamp(nonPlayers, 0, MaxNonPlayers)}
}

// PrivateTransfer is a private vehicle for the given number of passengers.
func PrivateTransfer(passengers int) TransferMode {
	return TransferMode{kind: TransferPrivate, passengers: clamp(passengers, 0, MaxPrivatePassengers)}
}

func (t TransferMode) Kind() TransferKind {
	if t.kind == "" {
		return TransferNone
	}
	return t.kind
}

func (t TransferMode) NonPlayers() int { return t.nonPlayers }
func (t TransferMode) Passengers() int { return t.passengers }

// NeedsPickup reports whether the customer asked for hotel pickup.
func (t TransferMode) NeedsPickup() bool { return t.Kind() != TransferNone }

type transferJSON struct {
	Kind       TransferKind `json:"kind"`
	NonPlayers int          `json:"non_players,omitempty"`
	Passengers int          `json:"passengers,omitempty"`
}

func (t TransferMode) MarshalJSON() ([]byte, error) {
	return json.Marshal(transferJSON{Kind: t.Kind(), NonPlayers: t.nonPlayers, Passengers: t.passengers})
}

func (t *TransferMode) UnmarshalJSON(b []byte) error {
	var in transferJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	switch in.Kind {
	case TransferShared:
		*t = SharedTransfer(in.NonPlayers)
	case TransferPrivate:
		*t = PrivateTransfer(in.Passengers)
	default:
		*t = NoTransfer()
	}
	return nil
}

// Draft is the in-progress booking selection. Use the With* methods to change
// it: each returns a new draft with every invariant already re-established.
type Draft struct {
	PackageID string         `json:"package_id"`
	Date      time.Time      `json:"-"`
	Time      string         `json:"time"`
	Guests    int            `json:"guests"`
	Hotel     string         `json:"hotel"`
	Room      string         `json:"room"`
	Transfer  TransferMode   `json:"transfer"`
	AddonIDs  []string       `json:"addons"`
	Upsells   map[string]int `json:"upsells"`
}

func NewDraft(packageID string) Draft {
	return Draft{
		PackageID: packageID,
		Guests:    MinGuests,
		Transfer:  NoTransfer(),
	}
}

// DateString is the draft date as YYYY-MM-DD, or "" when unset.
func (d Draft) DateString() string {
	if d.Date.IsZero() {
		return ""
	}
	return d.Date.Format(DateLayout)
}

func (d Draft) WithPackage(id string) Draft {
	d.PackageID = strings.TrimSpace(id)
	return d
}

func (d Draft) WithDate(date time.Time) Draft {
	if date.IsZero() {
		d.Date = time.Time{}
		return d
	}
	y, m, day := date.Date()
	d.Date = time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
	return d
}

func (d Draft) WithTime(slot string) Draft {
	d.Time = strings.TrimSpace(slot)
	return d
}

// WithGuests sets the group size and raises the private passenger count in
// the same step when it would otherwise fall below the group size.
func (d Draft) WithGuests(n int) Draft {
	d.Guests = max(n, MinGuests)
	d.Transfer = d.clampTransfer(d.Transfer)
	return d
}

func (d Draft) WithTransfer(mode TransferMode) Draft {
	d.Transfer = d.clampTransfer(mode)
	return d
}

// WithPickup toggles hotel pickup. Declining drops any transfer; accepting
// starts from a shared transfer with no non-players.
func (d Draft) WithPickup(need bool) Draft {
	if !need {
		d.Transfer = NoTransfer()
		return d
	}
	if !d.Transfer.NeedsPickup() {
		d.Transfer = SharedTransfer(0)
	}
	return d
}

// WithPrivateTransfer switches between the private vehicle and the shared van.
// Either way the other mode's count is discarded.
func (d Draft) WithPrivateTransfer(enabled bool) Draft {
	switch {
	case enabled && d.Transfer.Kind() != TransferPrivate:
		d.Transfer = d.clampTransfer(PrivateTransfer(d.Guests))
	case !enabled && d.Transfer.Kind() == TransferPrivate:
		d.Transfer = SharedTransfer(0)
	}
	return d
}

// WithPrivatePassengers only applies while a private transfer is selected.
func (d Draft) WithPrivatePassengers(n int) Draft {
	if d.Transfer.Kind() != TransferPrivate {
		return d
	}
	d.Transfer = d.clampTransfer(PrivateTransfer(n))
	return d
}

// WithNonPlayers only applies while the shared transfer is selected.
func (d Draft) WithNonPlayers(n int) Draft {
	if d.Transfer.Kind() != TransferShared {
		return d
	}
	d.Transfer = SharedTransfer(n)
	return d
}

func (d Draft) WithHotel(hotel, room string) Draft {
	d.Hotel = strings.TrimSpace(hotel)
	d.Room = strings.TrimSpace(room)
	return d
}

func (d Draft) WithAddon(id string, selected bool) Draft {
	out := make([]string, 0, len(d.AddonIDs)+1)
	for _, a := range d.AddonIDs {
		if a != id {
			out = append(out, a)
		}
	}
	if selected && id != "" {
		out = append(out, id)
	}
	d.AddonIDs = out
	return d
}

// WithUpsellQty sets the quantity of one upsell; zero or less removes it.
func (d Draft) WithUpsellQty(id string, qty int) Draft {
	next := make(map[string]int, len(d.Upsells)+1)
	for k, v := range d.Upsells {
		next[k] = v
	}
	if qty <= 0 || id == "" {
		delete(next, id)
	} else {
		next[id] = qty
	}
	d.Upsells = next
	return d
}

// Normalize clamps every field into its valid range. Drafts rebuilt from
// untrusted input go through here before anything else looks at them.
func (d Draft) Normalize(openTime OpenTimeSet) Draft {
	d.PackageID = strings.TrimSpace(d.PackageID)
	d.Guests = max(d.Guests, MinGuests)
	d.Transfer = d.clampTransfer(d.Transfer)
	d.Hotel = strings.TrimSpace(d.Hotel)
	d.Room = strings.TrimSpace(d.Room)
	d.Time = strings.TrimSpace(d.Time)
	if d.PackageID != "" && openTime.Contains(d.PackageID) {
		d.Time = TimeFlexible
	}

	seen := make(map[string]bool, len(d.AddonIDs))
	addons := make([]string, 0, len(d.AddonIDs))
	for _, id := range d.AddonIDs {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		addons = append(addons, id)
	}
	d.AddonIDs = addons

	upsells := make(map[string]int, len(d.Upsells))
	for id, qty := range d.Upsells {
		id = strings.TrimSpace(id)
		if id == "" || qty <= 0 {
			continue
		}
		upsells[id] = qty
	}
	d.Upsells = upsells
	return d
}

func (d Draft) clampTransfer(t TransferMode) TransferMode {
	switch t.Kind() {
	case TransferPrivate:
		return TransferMode{kind: TransferPrivate, passengers: clamp(t.passengers, d.minPassengers(), MaxPrivatePassengers)}
	case TransferShared:
		return SharedTransfer(t.nonPlayers)
	default:
		return NoTransfer()
	}
}

// minPassengers is the guest count, capped at what one vehicle seats.
func (d Draft) minPassengers() int {
	return clamp(d.Guests, MinGuests, MaxPrivatePassengers)
}

// FitsPrivateTransfer reports whether the whole group fits one private vehicle.
func (d Draft) FitsPrivateTransfer() bool {
	return d.Guests <= MaxPrivatePassengers
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
