package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/url"
	"strings"

	v1 "dairyflow/pkg/api/v1"
)

var errNotLoggedIn = errors.New("not logged in")

var commands = map[string]command{
	"login":             {usage: "-email addr -password pw", run: runLogin},
	"register-company":  {usage: "-email addr -password pw -name name [-phone p] [-address a]", run: runRegisterCompany},
	"register-employee": {usage: "-email addr -password pw -name name -code invite [-phone p]", run: runRegisterEmployee},
	"logout":            {usage: "", run: runLogout},
	"whoami":            {usage: "", run: runWhoami},
	"change-password":   {usage: "-current pw -new pw", run: runChangePassword},
	"company":           {usage: "me | update <json> | generate-code", run: runCompany},
	"dashboard":         {usage: "summary | production [week|month|year]", run: runDashboard},

	"cows":       {usage: recordUsage, run: records(func(a *app) recordAPI[v1.Cow] { return a.svc.Cows })},
	"milkings":   {usage: recordUsage + " (list -q cowId=<id>)", run: records(func(a *app) recordAPI[v1.Milking] { return a.svc.Milkings })},
	"quality":    {usage: recordUsage, run: records(func(a *app) recordAPI[v1.QualityTest] { return a.svc.Quality })},
	"inventory":  {usage: recordUsage + " (list -q lowStock=true)", run: records(func(a *app) recordAPI[v1.InventoryItem] { return a.svc.Inventory })},
	"deliveries": {usage: recordUsage, run: records(func(a *app) recordAPI[v1.Delivery] { return a.svc.Deliveries })},
	"employees":  {usage: recordUsage, run: records(func(a *app) recordAPI[v1.Employee] { return a.svc.Employees })},
}

func runLogin(ctx context.Context, a *app, args []string) (any, error) {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "")
	password := fs.String("password", "", "")
	if err := parseFlags(fs, args); err != nil {
		return nil, err
	}
	if err := requireFlags(*email, *password); err != nil {
		return nil, err
	}
	return a.svc.Auth.Login(ctx, *email, *password)
}

func runRegisterCompany(ctx context.Context, a *app, args []string) (any, error) {
	var req v1.RegisterCompanyRequest
	fs := flag.NewFlagSet("register-company", flag.ContinueOnError)
	fs.StringVar(&req.Email, "email", "", "")
	fs.StringVar(&req.Password, "password", "", "")
	fs.StringVar(&req.Name, "name", "", "")
	fs.StringVar(&req.Phone, "phone", "", "")
	fs.StringVar(&req.Address, "address", "", "")
	if err := parseFlags(fs, args); err != nil {
		return nil, err
	}
	if err := requireFlags(req.Email, req.Password, req.Name); err != nil {
		return nil, err
	}
	return a.svc.Auth.RegisterCompany(ctx, req)
}

func runRegisterEmployee(ctx context.Context, a *app, args []string) (any, error) {
	var req v1.RegisterEmployeeRequest
	fs := flag.NewFlagSet("register-employee", flag.ContinueOnError)
	fs.StringVar(&req.Email, "email", "", "")
	fs.StringVar(&req.Password, "password", "", "")
	fs.StringVar(&req.Name, "name", "", "")
	fs.StringVar(&req.Phone, "phone", "", "")
	fs.StringVar(&req.CompanyCode, "code", "", "")
	if err := parseFlags(fs, args); err != nil {
		return nil, err
	}
	if err := requireFlags(req.Email, req.Password, req.Name, req.CompanyCode); err != nil {
		return nil, err
	}
	return a.svc.Auth.RegisterEmployee(ctx, req)
}

func runLogout(ctx context.Context, a *app, _ []string) (any, error) {
	return nil, a.svc.Auth.Logout(ctx)
}

func runWhoami(ctx context.Context, a *app, _ []string) (any, error) {
	user, err := a.svc.Auth.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errNotLoggedIn
	}
	return user, nil
}

func runChangePassword(ctx context.Context, a *app, args []string) (any, error) {
	fs := flag.NewFlagSet("change-password", flag.ContinueOnError)
	current := fs.String("current", "", "")
	next := fs.String("new", "", "")
	if err := parseFlags(fs, args); err != nil {
		return nil, err
	}
	if err := requireFlags(*current, *next); err != nil {
		return nil, err
	}
	return nil, a.svc.Auth.ChangePassword(ctx, *current, *next)
}

func runCompany(ctx context.Context, a *app, args []string) (any, error) {
	if len(args) == 0 {
		return nil, errUsage
	}
	switch args[0] {
	case "me":
		return a.svc.Companies.Me(ctx)
	case "update":
		if len(args) != 2 {
			return nil, errUsage
		}
		var c v1.Company
		if err := decodeArg(args[1], &c); err != nil {
			return nil, err
		}
		return a.svc.Companies.UpdateMe(ctx, &c)
	case "generate-code":
		code, err := a.svc.Companies.GenerateCode(ctx)
		if err != nil {
			return nil, err
		}
		return v1.InviteCode{Code: code}, nil
	default:
		return nil, errUsage
	}
}

func runDashboard(ctx context.Context, a *app, args []string) (any, error) {
	if len(args) == 0 || args[0] == "summary" {
		return a.svc.Dashboard.Summary(ctx)
	}
	if args[0] != "production" || len(args) > 2 {
		return nil, errUsage
	}
	period := ""
	if len(args) == 2 {
		period = args[1]
	}
	return a.svc.Dashboard.Production(ctx, period)
}

const recordUsage = "list [-q key=value]... | get <id> | create <json> | update <id> <json> | delete <id>"

// recordAPI is the CRUD surface shared by the record services.
type recordAPI[T any] interface {
	List(ctx context.Context, query url.Values) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, v *T) (*T, error)
	Update(ctx context.Context, id string, v *T) (*T, error)
	Delete(ctx context.Context, id string) error
}

type queryFlag url.Values

func (q queryFlag) String() string { return url.Values(q).Encode() }

func (q queryFlag) Set(s string) error {
	k, v, ok := strings.Cut(s, "=")
	if !ok || k == "" {
		return fmt.Errorf("query must be key=value, got %q", s)
	}
	url.Values(q).Add(k, v)
	return nil
}

func records[T any](pick func(*app) recordAPI[T]) func(context.Context, *app, []string) (any, error) {
	return func(ctx context.Context, a *app, args []string) (any, error) {
		if len(args) == 0 {
			return nil, errUsage
		}
		api := pick(a)
		verb, rest := args[0], args[1:]

		switch {
		case verb == "list":
			q := url.Values{}
			fs := flag.NewFlagSet("list", flag.ContinueOnError)
			fs.Var(queryFlag(q), "q", "")
			if err := parseFlags(fs, rest); err != nil {
				return nil, err
			}
			return api.List(ctx, q)
		case verb == "get" && len(rest) == 1:
			return api.Get(ctx, rest[0])
		case verb == "create" && len(rest) == 1:
			v := new(T)
			if err := decodeArg(rest[0], v); err != nil {
				return nil, err
			}
			return api.Create(ctx, v)
		case verb == "update" && len(rest) == 2:
			v := new(T)
			if err := decodeArg(rest[1], v); err != nil {
				return nil, err
			}
			return api.Update(ctx, rest[0], v)
		case verb == "delete" && len(rest) == 1:
			return nil, api.Delete(ctx, rest[0])
		default:
			return nil, errUsage
		}
	}
}

func decodeArg(raw string, v any) error {
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return fmt.Errorf("invalid JSON argument: %w", err)
	}
	return nil
}
