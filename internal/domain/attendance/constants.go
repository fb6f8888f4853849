package attendance

const (
	StatusPresent = "present"
	StatusSick    = "sick"
	StatusAlpha   = "alpha"
	StatusPermit  = "permit"
	StatusLeave   = "leave"
)

var statuses = map[string]struct{}{
	StatusPresent: {},
	StatusSick:    {},
	StatusAlpha:   {},
	StatusPermit:  {},
	StatusLeave:   {},
}

func ValidStatus(status string) bool {
	_, ok := statuses[status]
	return ok
}

var Statuses = []string{StatusPresent, StatusSick, StatusAlpha, StatusPermit, StatusLeave}
