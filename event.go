package marionette

// EventData is an event definition with its default payload.
type EventData struct {
	Name      string
	Int       int
	Float     float32
	String    string
	AudioPath string
	Volume    float32
	Balance   float32
}

// NewEventData returns event data with full volume.
func NewEventData(name string) *EventData {
	return &EventData{Name: name, Volume: 1}
}

// Event is a keyed occurrence of an EventData. The payload starts as a copy of
// the data's defaults and may be overridden per key.
type Event struct {
	Data    *EventData
	Time    float32
	Int     int
	Float   float32
	String  string
	Volume  float32
	Balance float32
}

// NewEvent returns an event at time carrying data's default payload.
func NewEvent(time float32, data *EventData) *Event {
	if data == nil {
		panic("marionette: NewEvent with nil data")
	}
	return &Event{
		Data:    data,
		Time:    time,
		Int:     data.Int,
		Float:   data.Float,
		String:  data.String,
		Volume:  data.Volume,
		Balance: data.Balance,
	}
}

// Name returns the event data name.
func (e *Event) Name() string { return e.Data.Name }
