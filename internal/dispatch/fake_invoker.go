package dispatch

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/stepquest/stepquest-backend/internal/concurrency"
	"github.com/stepquest/stepquest-backend/internal/domain"
	"github.com/stepquest/stepquest-backend/internal/username"
)

// FakeInvoker is a stateful in-memory implementation of the backend
// procedure substrate. It mirrors the semantics of the SQL procedures
// under migrations/ and enables integration-style unit tests without a
// database. It lives in this package (not a _test file) so the friend,
// territory, and handler packages can all test against the same state
// machine.
type FakeInvoker struct {
	mu          sync.Mutex
	users       map[int64]*domain.User
	equips      map[int64]domain.EquipSet
	items       map[int64]map[int64]int64 // userid -> itemid -> quantity
	sessions    []domain.Session
	friendships map[string]*domain.Friendship
	territories map[int64]map[string]*domain.TerritoryClaim

	failErr error
	calls   []InvokedCall
}

// InvokedCall records one substrate invocation for assertions.
type InvokedCall struct {
	Procedure string
	Args      []any
}

// NewFakeInvoker creates an empty fake substrate.
func NewFakeInvoker() *FakeInvoker {
	return &FakeInvoker{
		users:       make(map[int64]*domain.User),
		equips:      make(map[int64]domain.EquipSet),
		items:       make(map[int64]map[int64]int64),
		friendships: make(map[string]*domain.Friendship),
		territories: make(map[int64]map[string]*domain.TerritoryClaim),
	}
}

// AddUser seeds a user.
func (f *FakeInvoker) AddUser(id int64, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[id] = &domain.User{ID: id, Username: username.Normalize(name)}
}

// SetError makes every subsequent invocation fail with err. Pass nil to
// clear.
func (f *FakeInvoker) SetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failErr = err
}

// Calls returns a copy of all recorded invocations.
func (f *FakeInvoker) Calls() []InvokedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]InvokedCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// Friendship returns the relationship record for a pair, if any.
func (f *FakeInvoker) Friendship(a, b int64) (domain.Friendship, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.friendships[concurrency.PairKey(a, b)]
	if !ok {
		return domain.Friendship{}, false
	}
	return *rec, true
}

// ClaimCount returns how many cells a user currently holds.
func (f *FakeInvoker) ClaimCount(userID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.territories[userID])
}

// SessionCount returns how many sessions a user has recorded.
func (f *FakeInvoker) SessionCount(userID int64) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.sessions {
		if s.UserID == userID {
			n++
		}
	}
	return n
}

// Invoke implements Invoker.
func (f *FakeInvoker) Invoke(_ context.Context, procedure string, args []any) ([]domain.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, InvokedCall{Procedure: procedure, Args: args})
	if f.failErr != nil {
		return nil, f.failErr
	}

	switch procedure {
	case "add_session":
		f.sessions = append(f.sessions, domain.Session{
			UserID:    args[0].(int64),
			StartTime: args[1].(time.Time),
			EndTime:   args[2].(time.Time),
			Steps:     int(args[3].(int64)),
		})
		return resultRow(domain.ResultRecorded), nil

	case "purchase_item":
		userID, itemID, amount := args[0].(int64), args[1].(int64), args[2].(int64)
		if f.items[userID] == nil {
			f.items[userID] = make(map[int64]int64)
		}
		f.items[userID][itemID] += amount
		return resultRow(domain.ResultPurchased), nil

	case "equip_items":
		f.equips[args[0].(int64)] = domain.EquipSet{
			Hat:   int(args[1].(int64)),
			Shirt: int(args[2].(int64)),
			Pants: int(args[3].(int64)),
			Shoes: int(args[4].(int64)),
		}
		return resultRow(domain.ResultEquipped), nil

	case "update_user_info":
		u := f.userOrCreate(args[0].(int64))
		u.Weight = args[1].(float64)
		u.Height = args[2].(float64)
		u.Gender = args[3].(string)
		return resultRow(domain.ResultUpdated), nil

	case "set_daily_goal":
		u := f.userOrCreate(args[0].(int64))
		u.DailyGoal = int(args[1].(int64))
		return resultRow(domain.ResultUpdated), nil

	case "request_friend":
		return f.requestFriend(args[0].(int64), args[1].(int64)), nil
	case "accept_friend":
		return f.acceptFriend(args[0].(int64), args[1].(int64)), nil
	case "deny_friend":
		return f.denyFriend(args[0].(int64), args[1].(int64)), nil
	case "remove_friend":
		return f.removeFriend(args[0].(int64), args[1].(int64)), nil

	case "claim_territory":
		return f.claimTerritory(args[0].(int64), args[1].(float64), args[2].(float64)), nil

	case "get_items":
		return f.getItems(args[0].(int64)), nil
	case "get_user_data":
		return f.getUserData(args[0].(int64)), nil
	case "get_steps_by_date":
		return f.getStepsByDate(args[0].(int64), args[1].(time.Time)), nil
	case "get_weekly_data":
		return f.getWeeklyData(args[0].(int64), args[1].(time.Time)), nil
	case "get_friends":
		return f.getFriends(args[0].(int64)), nil
	case "get_pending":
		return f.getPending(args[0].(int64)), nil
	case "search_user":
		return f.searchUser(args[0].(string)), nil
	case "get_territory":
		return f.getTerritory(args[0].(int64)), nil

	default:
		return nil, fmt.Errorf("%w: procedure %q does not exist", domain.ErrBackend, procedure)
	}
}

func resultRow(result string) []domain.Row {
	return []domain.Row{{"result": result}}
}

func (f *FakeInvoker) userOrCreate(id int64) *domain.User {
	if u, ok := f.users[id]; ok {
		return u
	}
	u := &domain.User{ID: id, Username: fmt.Sprintf("user%d", id)}
	f.users[id] = u
	return u
}

func (f *FakeInvoker) requestFriend(requester, target int64) []domain.Row {
	key := concurrency.PairKey(requester, target)
	if rec, ok := f.friendships[key]; ok {
		// Re-request is a no-op; report the current state.
		if rec.Status == domain.FriendshipAccepted {
			return resultRow(domain.ResultAccepted)
		}
		return resultRow(domain.ResultPending)
	}
	f.friendships[key] = &domain.Friendship{
		UserID:   requester,
		FriendID: target,
		Status:   domain.FriendshipPending,
	}
	return resultRow(domain.ResultRequested)
}

func (f *FakeInvoker) acceptFriend(accepter, requester int64) []domain.Row {
	key := concurrency.PairKey(accepter, requester)
	rec, ok := f.friendships[key]
	if !ok || rec.Status != domain.FriendshipPending ||
		rec.UserID != requester || rec.FriendID != accepter {
		return resultRow(domain.ResultNoPending)
	}
	rec.Status = domain.FriendshipAccepted
	return resultRow(domain.ResultAccepted)
}

func (f *FakeInvoker) denyFriend(denier, requester int64) []domain.Row {
	key := concurrency.PairKey(denier, requester)
	rec, ok := f.friendships[key]
	if !ok || rec.Status != domain.FriendshipPending ||
		rec.UserID != requester || rec.FriendID != denier {
		return resultRow(domain.ResultNoPending)
	}
	delete(f.friendships, key)
	return resultRow(domain.ResultDenied)
}

func (f *FakeInvoker) removeFriend(a, b int64) []domain.Row {
	key := concurrency.PairKey(a, b)
	if _, ok := f.friendships[key]; !ok {
		return resultRow(domain.ResultNotFound)
	}
	delete(f.friendships, key)
	return resultRow(domain.ResultRemoved)
}

func cellKey(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', -1, 64) + ":" + strconv.FormatFloat(lng, 'f', -1, 64)
}

func (f *FakeInvoker) claimTerritory(userID int64, lat, lng float64) []domain.Row {
	if f.territories[userID] == nil {
		f.territories[userID] = make(map[string]*domain.TerritoryClaim)
	}
	key := cellKey(lat, lng)
	if _, ok := f.territories[userID][key]; ok {
		return resultRow(domain.ResultAlreadyOwned)
	}
	f.territories[userID][key] = &domain.TerritoryClaim{
		UserID: userID, Lat: lat, Lng: lng, Level: 0,
	}
	return resultRow(domain.ResultClaimed)
}

func (f *FakeInvoker) getItems(userID int64) []domain.Row {
	ids := make([]int64, 0, len(f.items[userID]))
	for id := range f.items[userID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := make([]domain.Row, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, domain.Row{"itemid": id, "quantity": f.items[userID][id]})
	}
	return rows
}

func (f *FakeInvoker) getUserData(userID int64) []domain.Row {
	u, ok := f.users[userID]
	if !ok {
		return []domain.Row{}
	}
	eq := f.equips[userID]
	return []domain.Row{{
		"userid":     u.ID,
		"username":   u.Username,
		"weight":     u.Weight,
		"height":     u.Height,
		"gender":     u.Gender,
		"daily_goal": int64(u.DailyGoal),
		"hat":        int64(eq.Hat),
		"shirt":      int64(eq.Shirt),
		"pants":      int64(eq.Pants),
		"shoes":      int64(eq.Shoes),
	}}
}

func (f *FakeInvoker) getStepsByDate(userID int64, date time.Time) []domain.Row {
	rows := []domain.Row{}
	y, m, d := date.Date()
	for _, s := range f.sessions {
		sy, sm, sd := s.StartTime.Date()
		if s.UserID == userID && sy == y && sm == m && sd == d {
			rows = append(rows, domain.Row{
				"start_time": s.StartTime,
				"end_time":   s.EndTime,
				"steps":      int64(s.Steps),
			})
		}
	}
	return rows
}

func (f *FakeInvoker) getWeeklyData(userID int64, start time.Time) []domain.Row {
	rows := make([]domain.Row, 0, 7)
	for i := 0; i < 7; i++ {
		day := start.AddDate(0, 0, i)
		y, m, d := day.Date()
		var total int64
		for _, s := range f.sessions {
			sy, sm, sd := s.StartTime.Date()
			if s.UserID == userID && sy == y && sm == m && sd == d {
				total += int64(s.Steps)
			}
		}
		rows = append(rows, domain.Row{"date": day, "steps": total})
	}
	return rows
}

func (f *FakeInvoker) getFriends(userID int64) []domain.Row {
	rows := []domain.Row{}
	for _, rec := range f.friendships {
		if rec.Status != domain.FriendshipAccepted {
			continue
		}
		var friendID int64
		switch userID {
		case rec.UserID:
			friendID = rec.FriendID
		case rec.FriendID:
			friendID = rec.UserID
		default:
			continue
		}
		row := domain.Row{"friendid": friendID}
		if u, ok := f.users[friendID]; ok {
			row["username"] = u.Username
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i]["friendid"].(int64) < rows[j]["friendid"].(int64)
	})
	return rows
}

func (f *FakeInvoker) getPending(userID int64) []domain.Row {
	rows := []domain.Row{}
	for _, rec := range f.friendships {
		if rec.Status != domain.FriendshipPending || rec.FriendID != userID {
			continue
		}
		row := domain.Row{"userid": rec.UserID}
		if u, ok := f.users[rec.UserID]; ok {
			row["username"] = u.Username
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i]["userid"].(int64) < rows[j]["userid"].(int64)
	})
	return rows
}

func (f *FakeInvoker) searchUser(name string) []domain.Row {
	name = username.Normalize(name)
	rows := []domain.Row{}
	for _, u := range f.users {
		if u.Username == name {
			rows = append(rows, domain.Row{"userid": u.ID, "username": u.Username})
		}
	}
	return rows
}

func (f *FakeInvoker) getTerritory(userID int64) []domain.Row {
	claims := make([]*domain.TerritoryClaim, 0, len(f.territories[userID]))
	for _, c := range f.territories[userID] {
		claims = append(claims, c)
	}
	sort.Slice(claims, func(i, j int) bool {
		if claims[i].Lat != claims[j].Lat {
			return claims[i].Lat < claims[j].Lat
		}
		return claims[i].Lng < claims[j].Lng
	})
	rows := make([]domain.Row, 0, len(claims))
	for _, c := range claims {
		rows = append(rows, domain.Row{
			"userid": c.UserID,
			"lat":    c.Lat,
			"lng":    c.Lng,
			"level":  int64(c.Level),
		})
	}
	return rows
}
