package auth

// Resource names a protected entity type.
type Resource string

const (
	ResourceAppointment   Resource = "Appointment"
	ResourceDoctor        Resource = "Doctor"
	ResourcePatient       Resource = "Patient"
	ResourceMedicalRecord Resource = "MedicalRecord"
	ResourceDepartment    Resource = "Department"
	ResourceStaff         Resource = "Staff"
)

// Resources lists every protected resource type.
var Resources = []Resource{
	ResourceAppointment, ResourceDoctor, ResourcePatient,
	ResourceMedicalRecord, ResourceDepartment, ResourceStaff,
}

// Operation names an action on a resource.
type Operation string

const (
	OpList             Operation = "LIST"
	OpRead             Operation = "READ"
	OpCreate           Operation = "CREATE"
	OpUpdate           Operation = "UPDATE"
	OpDelete           Operation = "DELETE"
	OpStatusTransition Operation = "STATUS_TRANSITION"
)

// Operations lists every operation.
var Operations = []Operation{OpList, OpRead, OpCreate, OpUpdate, OpDelete, OpStatusTransition}

// Appointment statuses. The terminal ones admit no further transition.
const (
	StatusScheduled = "SCHEDULED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
	StatusNoShow    = "NO_SHOW"
)

// IsTerminalStatus reports whether an appointment in status s is final.
func IsTerminalStatus(s string) bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// DenyReason explains a denied decision.
type DenyReason string

const (
	ReasonUnauthenticated   DenyReason = "Unauthenticated"
	ReasonForbidden         DenyReason = "Forbidden"
	ReasonInvalidTransition DenyReason = "InvalidTransition"
	ReasonHasDependents     DenyReason = "HasDependents"
)

// Request is the input of one access decision.
type Request struct {
	Actor     Actor
	Resource  Resource
	Operation Operation
	// OwnerID is the user that created or owns an existing row.
	OwnerID string
	// CurrentStatus and TargetStatus apply to STATUS_TRANSITION.
	CurrentStatus string
	TargetStatus  string
	// Dependents counts rows that reference the resource; used on DELETE.
	Dependents int
}

// RowFilter restricts a list to the rows an actor may see. The zero value
// means every row is visible.
type RowFilter struct {
	OwnerID string
}

// All reports whether the filter admits every row.
func (f RowFilter) All() bool { return f.OwnerID == "" }

// Decision is the outcome of Evaluate.
type Decision struct {
	Allowed bool
	Reason  DenyReason
	Filter  RowFilter
	// AssignOwner is set on CREATE Appointment: the owner the new row must
	// be stored with, whatever the client sent.
	AssignOwner string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(r DenyReason) Decision { return Decision{Reason: r} }

// adminWritable are the resources only ADMIN may create, update or delete.
var adminWritable = map[Resource]bool{
	ResourceDoctor:        true,
	ResourcePatient:       true,
	ResourceMedicalRecord: true,
	ResourceDepartment:    true,
	ResourceStaff:         true,
}

// Evaluate decides whether req is permitted and, for lists, which rows are
// visible. It has no side effects and is safe for concurrent use.
func Evaluate(req Request) Decision {
	a := req.Actor
	if !a.Authenticated() {
		return deny(ReasonUnauthenticated)
	}

	switch req.Operation {
	case OpCreate, OpUpdate, OpDelete:
		if adminWritable[req.Resource] {
			if !a.IsAdmin() {
				return deny(ReasonForbidden)
			}
			if req.Operation == OpDelete && req.Dependents > 0 &&
				(req.Resource == ResourcePatient || req.Resource == ResourceDoctor) {
				return deny(ReasonHasDependents)
			}
			return allow()
		}
	}

	if req.Resource == ResourceAppointment {
		return evaluateAppointment(req)
	}

	switch req.Operation {
	case OpList:
		return evaluateList(req)
	case OpRead:
		return evaluateRead(req)
	}
	return deny(ReasonForbidden)
}

func evaluateAppointment(req Request) Decision {
	a := req.Actor
	switch req.Operation {
	case OpCreate:
		d := allow()
		d.AssignOwner = a.UserID
		return d
	case OpList:
		return evaluateList(req)
	case OpRead, OpUpdate:
		if a.IsAdmin() || (req.OwnerID != "" && req.OwnerID == a.UserID) {
			return allow()
		}
		return deny(ReasonForbidden)
	case OpDelete:
		if a.IsAdmin() {
			return allow()
		}
		return deny(ReasonForbidden)
	case OpStatusTransition:
		if !a.IsAdmin() {
			return deny(ReasonForbidden)
		}
		if req.CurrentStatus != StatusScheduled || !IsTerminalStatus(req.TargetStatus) {
			return deny(ReasonInvalidTransition)
		}
		return allow()
	}
	return deny(ReasonForbidden)
}

func evaluateList(req Request) Decision {
	a := req.Actor
	switch req.Resource {
	case ResourceDoctor, ResourceDepartment, ResourcePatient:
		return allow()
	case ResourceStaff:
		if a.IsAdmin() {
			return allow()
		}
		return deny(ReasonForbidden)
	case ResourceAppointment, ResourceMedicalRecord:
		d := allow()
		if !a.IsAdmin() {
			d.Filter = RowFilter{OwnerID: a.UserID}
		}
		return d
	}
	return deny(ReasonForbidden)
}

func evaluateRead(req Request) Decision {
	a := req.Actor
	switch req.Resource {
	case ResourceDoctor, ResourceDepartment, ResourcePatient:
		return allow()
	case ResourceStaff:
		if a.IsAdmin() {
			return allow()
		}
	case ResourceMedicalRecord:
		if a.IsAdmin() || (req.OwnerID != "" && req.OwnerID == a.UserID) {
			return allow()
		}
	}
	return deny(ReasonForbidden)
}
