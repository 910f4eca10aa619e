package valueobjects

// OutcomeKind is the active variant of an Outcome.
type OutcomeKind int

const (
	OutcomeIdle OutcomeKind = iota
	OutcomeLoading
	OutcomeSuccess
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeIdle:
		return "idle"
	case OutcomeLoading:
		return "loading"
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the result of the most recent fusion request. Exactly one variant is
// active; the payload fields are only reachable through the variant that owns them.
type Outcome struct {
	kind         OutcomeKind
	imageDataURL string
	message      string
}

func IdleOutcome() Outcome {
	return Outcome{kind: OutcomeIdle}
}

func LoadingOutcome() Outcome {
	return Outcome{kind: OutcomeLoading}
}

func SuccessOutcome(imageDataURL string) Outcome {
	return Outcome{kind: OutcomeSuccess, imageDataURL: imageDataURL}
}

func FailureOutcome(message string) Outcome {
	return Outcome{kind: OutcomeFailure, message: message}
}

func (o Outcome) Kind() OutcomeKind {
	return o.kind
}

func (o Outcome) IsLoading() bool {
	return o.kind == OutcomeLoading
}

// ImageDataURL returns the composite image when the outcome is Success.
func (o Outcome) ImageDataURL() (string, bool) {
	if o.kind != OutcomeSuccess {
		return "", false
	}
	return o.imageDataURL, true
}

// Message returns the error text when the outcome is Failure.
func (o Outcome) Message() (string, bool) {
	if o.kind != OutcomeFailure {
		return "", false
	}
	return o.message, true
}
