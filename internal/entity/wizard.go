package entity

// Step is a position in the create-event wizard.
type Step string

const (
	StepDetails Step = "details"
	StepMedia   Step = "media"
	StepTickets Step = "tickets"
	StepPublish Step = "publish"
)

var Steps = []Step{StepDetails, StepMedia, StepTickets, StepPublish}

var stepTitles = map[Step]string{
	StepDetails: "Event Details",
	StepMedia:   "Media",
	StepTickets: "Tickets",
	StepPublish: "Publish",
}

func (s Step) Title() string {
	return stepTitles[s]
}

func (s Step) Index() int {
	for i, step := range Steps {
		if step == s {
			return i
		}
	}
	return -1
}

func (s Step) Valid() bool {
	return s.Index() >= 0
}

// Completeness is derived from a draft on every read, never stored.
type Completeness struct {
	HasDetails bool `json:"hasDetails"`
	HasMedia   bool `json:"hasMedia"`
	HasTickets bool `json:"hasTickets"`
}

type Notice struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type StepResolution struct {
	Requested    Step         `json:"requested"`
	Step         Step         `json:"step"`
	Redirected   bool         `json:"redirected"`
	Notice       *Notice      `json:"notice,omitempty"`
	Completeness Completeness `json:"completeness"`
}
