// Package dispatch is the action-dispatch core: a static registry of
// client-visible actions, a validator that turns untyped request input
// into typed procedure arguments, and a dispatcher that executes the
// named procedure against the backend substrate and shapes the uniform
// response envelope.
package dispatch

// Kind is the primitive type a registry parameter is coerced to.
type Kind string

const (
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindString Kind = "string"
	KindDate   Kind = "date"
)

// Param is one required client-supplied parameter of an action.
type Param struct {
	Name string
	Kind Kind
}

// Descriptor describes one registered action: which backend procedure
// it invokes, the parameters it requires, and its identity rules.
// Descriptors are the single source of truth for every action string
// the dispatch endpoints accept; adding an action means adding a
// descriptor and its backend procedure, never new control flow.
type Descriptor struct {
	// Action is the client-visible action string.
	Action string
	// Procedure is the backend procedure name. Always a registry
	// constant, never derived from request input.
	Procedure string
	// Params are the client-supplied parameters in procedure argument
	// order, after the identity argument when IdentityArg is set.
	Params []Param
	// IdentityArg makes the resolved user ID the procedure's first argument.
	IdentityArg bool
	// RequiresAuth rejects calls that carry no authenticated identity.
	// Actions without it accept an explicit userid parameter instead.
	RequiresAuth bool
	// Write marks mutating actions. A mismatched client-supplied userid
	// on a write is rejected rather than silently ignored.
	Write bool
}

// Registry is a fixed action table, built once at process start.
type Registry struct {
	actions map[string]Descriptor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{actions: make(map[string]Descriptor)}
}

// Register adds a descriptor. Later registrations replace earlier ones,
// which is how the deprecated user_data write alias shares the
// equip_items procedure.
func (r *Registry) Register(d Descriptor) {
	r.actions[d.Action] = d
}

// Lookup returns the descriptor for an action string.
func (r *Registry) Lookup(action string) (Descriptor, bool) {
	d, ok := r.actions[action]
	return d, ok
}

// Actions returns the registered action names. Order is unspecified.
func (r *Registry) Actions() []string {
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	return names
}

// NewWriteRegistry builds the registry for the update endpoint.
func NewWriteRegistry() *Registry {
	r := NewRegistry()

	r.Register(Descriptor{
		Action:      "sessions",
		Procedure:   "add_session",
		IdentityArg: true,
		Write:       true,
		Params: []Param{
			{Name: "start_time", Kind: KindDate},
			{Name: "end_time", Kind: KindDate},
			{Name: "steps", Kind: KindInt},
		},
	})
	r.Register(Descriptor{
		Action:      "purchase",
		Procedure:   "purchase_item",
		IdentityArg: true,
		Write:       true,
		Params: []Param{
			{Name: "itemid", Kind: KindInt},
			{Name: "amount", Kind: KindInt},
		},
	})

	equip := Descriptor{
		Action:      "equip_items",
		Procedure:   "equip_items",
		IdentityArg: true,
		Write:       true,
		Params: []Param{
			{Name: "hat", Kind: KindInt},
			{Name: "shirt", Kind: KindInt},
			{Name: "pants", Kind: KindInt},
			{Name: "shoes", Kind: KindInt},
		},
	}
	r.Register(equip)
	// DEPRECATED: "user_data" is a legacy alias for equip_items on the
	// write side. Remove once no client sends it.
	alias := equip
	alias.Action = "user_data"
	r.Register(alias)

	r.Register(Descriptor{
		Action:      "update_user_info",
		Procedure:   "update_user_info",
		IdentityArg: true,
		Write:       true,
		Params: []Param{
			{Name: "weight", Kind: KindFloat},
			{Name: "height", Kind: KindFloat},
			{Name: "gender", Kind: KindString},
		},
	})
	r.Register(Descriptor{
		Action:      "set_daily_goal",
		Procedure:   "set_daily_goal",
		IdentityArg: true,
		Write:       true,
		Params:      []Param{{Name: "daily_goal", Kind: KindInt}},
	})

	for _, action := range []string{"request_friend", "accept_friend", "deny_friend", "remove_friend"} {
		r.Register(Descriptor{
			Action:      action,
			Procedure:   action,
			IdentityArg: true,
			Write:       true,
			Params:      []Param{{Name: "friendid", Kind: KindInt}},
		})
	}

	r.Register(Descriptor{
		Action:      "claim_territory",
		Procedure:   "claim_territory",
		IdentityArg: true,
		Write:       true,
		Params: []Param{
			{Name: "lat", Kind: KindFloat},
			{Name: "lng", Kind: KindFloat},
		},
	})

	return r
}

// NewReadRegistry builds the registry for the retrieve endpoint.
func NewReadRegistry() *Registry {
	r := NewRegistry()

	r.Register(Descriptor{Action: "get_items", Procedure: "get_items", IdentityArg: true})
	r.Register(Descriptor{Action: "user_data", Procedure: "get_user_data", IdentityArg: true})
	r.Register(Descriptor{
		Action:      "steps_by_date",
		Procedure:   "get_steps_by_date",
		IdentityArg: true,
		Params:      []Param{{Name: "date", Kind: KindDate}},
	})
	r.Register(Descriptor{
		Action:      "steps_by_week",
		Procedure:   "get_weekly_data",
		IdentityArg: true,
		Params:      []Param{{Name: "date", Kind: KindDate}},
	})
	r.Register(Descriptor{Action: "friends", Procedure: "get_friends", IdentityArg: true})
	r.Register(Descriptor{Action: "pending_friends", Procedure: "get_pending", IdentityArg: true})
	r.Register(Descriptor{
		Action:    "search_user",
		Procedure: "search_user",
		Params:    []Param{{Name: "username", Kind: KindString}},
	})
	r.Register(Descriptor{Action: "territory", Procedure: "get_territory", IdentityArg: true})

	return r
}
