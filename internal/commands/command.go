package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sandeepkv93/thetask/internal/model"
)

type Type string

const (
	TypeAdd      Type = "add"
	TypeMove     Type = "move"
	TypeFilter   Type = "filter"
	TypePriority Type = "priority"
	TypePlan     Type = "plan"
	TypeHint     Type = "hint"
	TypeTheme    Type = "theme"
	TypeDelete   Type = "delete"
	TypeCalendar Type = "calendar"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type AddArgs struct {
	Title string
}

type MoveArgs struct {
	Status model.Status
}

type FilterArgs struct {
	Query string
}

type PriorityArgs struct {
	Filter model.PriorityFilter
}

type PlanArgs struct {
	Goal string
}

// ThemeArgs with an empty Theme means toggle.
type ThemeArgs struct {
	Theme model.Theme
}

type Command struct {
	Type     Type
	Raw      string
	Add      *AddArgs
	Move     *MoveArgs
	Filter   *FilterArgs
	Priority *PriorityArgs
	Plan     *PlanArgs
	Theme    *ThemeArgs
}

// aliases lets the palette accept a few shorter spellings.
var aliases = map[string]Type{
	"new":    TypeAdd,
	"mv":     TypeMove,
	"search": TypeFilter,
	"rm":     TypeDelete,
	"del":    TypeDelete,
	"cal":    TypeCalendar,
}

func Parse(input string) (Command, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := Type(strings.ToLower(parts[0]))
	if alias, ok := aliases[string(head)]; ok {
		head = alias
	}
	args := parts[1:]

	switch head {
	case TypeAdd:
		return parseAdd(input, args)
	case TypeMove:
		return parseMove(input, args)
	case TypeFilter:
		return Command{Type: TypeFilter, Raw: input, Filter: &FilterArgs{Query: strings.Join(args, " ")}}, nil
	case TypePriority:
		return parsePriority(input, args)
	case TypePlan:
		return parsePlan(input, args)
	case TypeTheme:
		return parseTheme(input, args)
	case TypeHint, TypeDelete, TypeCalendar:
		if len(args) > 0 {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s takes no arguments", head)}
		}
		return Command{Type: head, Raw: input}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", parts[0])}
	}
}

func parseAdd(raw string, args []string) (Command, error) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Command{Type: TypeAdd, Raw: raw, Add: &AddArgs{Title: title}}, nil
}

func parseMove(raw string, args []string) (Command, error) {
	if len(args) == 0 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "move requires a status (todo, in_progress, done, blocked)"}
	}
	status, err := model.ParseStatus(strings.Join(args, " "))
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
	}
	return Command{Type: TypeMove, Raw: raw, Move: &MoveArgs{Status: status}}, nil
}

func parsePriority(raw string, args []string) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "priority requires one of all, low, medium, high, critical"}
	}
	pf, err := model.ParsePriorityFilter(args[0])
	if err != nil {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
	}
	return Command{Type: TypePriority, Raw: raw, Priority: &PriorityArgs{Filter: pf}}, nil
}

func parsePlan(raw string, args []string) (Command, error) {
	goal := strings.TrimSpace(strings.Join(args, " "))
	if goal == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "plan requires a goal"}
	}
	return Command{Type: TypePlan, Raw: raw, Plan: &PlanArgs{Goal: goal}}, nil
}

func parseTheme(raw string, args []string) (Command, error) {
	switch len(args) {
	case 0:
		return Command{Type: TypeTheme, Raw: raw, Theme: &ThemeArgs{}}, nil
	case 1:
		theme, err := model.ParseTheme(args[0])
		if err != nil {
			return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: err.Error()}
		}
		return Command{Type: TypeTheme, Raw: raw, Theme: &ThemeArgs{Theme: theme}}, nil
	default:
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "theme takes at most one argument"}
	}
}

// IsCode reports whether err is a CommandError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var ce *CommandError
	return errors.As(err, &ce) && ce.Code == code
}
