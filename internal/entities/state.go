package entities

// FlowState is a step of the booking flow.
type FlowState string

const (
	StateRouteSelect   FlowState = "ROUTE_SELECT"
	StateCarSelect     FlowState = "CAR_SELECT"
	StatePassengerInfo FlowState = "PASSENGER_INFO"
	StatePayment       FlowState = "PAYMENT"
	StateCompleted     FlowState = "COMPLETED"
)

// ParseFlowState accepts the canonical names plus the lower-case path form used in URLs
// (e.g. "car_select", "passenger-info").
func ParseFlowState(s string) (FlowState, bool) {
	switch s {
	case "ROUTE_SELECT", "route_select", "route-select", "route":
		return StateRouteSelect, true
	case "CAR_SELECT", "car_select", "car-select", "cars":
		return StateCarSelect, true
	case "PASSENGER_INFO", "passenger_info", "passenger-info", "info":
		return StatePassengerInfo, true
	case "PAYMENT", "payment":
		return StatePayment, true
	case "COMPLETED", "completed":
		return StateCompleted, true
	}
	return "", false
}
