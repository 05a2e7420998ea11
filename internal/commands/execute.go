package commands

import "fmt"

type Result struct {
	Message string
}

type Handlers struct {
	Add      func(AddArgs) (Result, error)
	Move     func(MoveArgs) (Result, error)
	Filter   func(FilterArgs) (Result, error)
	Priority func(PriorityArgs) (Result, error)
	Plan     func(PlanArgs) (Result, error)
	Hint     func() (Result, error)
	Theme    func(ThemeArgs) (Result, error)
	Delete   func() (Result, error)
	Calendar func() (Result, error)
}

func missing(t Type) error {
	return &CommandError{Code: ErrCodeHandlerMissing, Message: fmt.Sprintf("%s handler not configured", t)}
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeAdd:
		if handlers.Add == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Add(*cmd.Add)
	case TypeMove:
		if handlers.Move == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Move(*cmd.Move)
	case TypeFilter:
		if handlers.Filter == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Filter(*cmd.Filter)
	case TypePriority:
		if handlers.Priority == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Priority(*cmd.Priority)
	case TypePlan:
		if handlers.Plan == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Plan(*cmd.Plan)
	case TypeHint:
		if handlers.Hint == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Hint()
	case TypeTheme:
		if handlers.Theme == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Theme(*cmd.Theme)
	case TypeDelete:
		if handlers.Delete == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Delete()
	case TypeCalendar:
		if handlers.Calendar == nil {
			return Result{}, missing(cmd.Type)
		}
		return handlers.Calendar()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
