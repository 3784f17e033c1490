package enum

// ── Fulfillment actions (staff-initiated) ──

const (
	ActionMarkReady     = "MARK_READY"
	ActionMarkCollected = "MARK_COLLECTED"
)

// ── Events (routing keys on the peseat.events exchange, websocket "type") ──

const (
	EventOrderPlaced    = "order.placed"
	EventOrderReady     = "order.ready"
	EventOrderCollected = "order.collected"
	EventSMSSend        = "sms.send"
)

// ── Websocket rooms ──

const (
	RoomStaff          = "staff"
	RoomCustomerPrefix = "customer:"
)

// ── Defaults ──

const (
	DefaultOrderPrefix    = "PES-"
	MaxLineQuantity       = 99
	DefaultTrendingLimit  = 4
	DefaultOrderPageLimit = 20
	MaxOrderPageLimit     = 100
)
