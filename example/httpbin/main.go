package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/mnehpets/oneclient/endpoint"
	"github.com/mnehpets/oneclient/provider"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

// HTTPBin is the closed set of httpbin.org endpoints used here.
type HTTPBin struct {
	endpoint.Defaults
	op   string
	args map[string]string
	user string
	pass string
	data any
}

func Get(args map[string]string) HTTPBin { return HTTPBin{op: "get", args: args} }
func Post(data any) HTTPBin              { return HTTPBin{op: "post", data: data} }
func Form(fields ...endpoint.Field) HTTPBin {
	return HTTPBin{op: "form", data: endpoint.Form(fields)}
}

func BasicAuth(user, pass string) HTTPBin {
	return HTTPBin{op: "basic-auth", user: user, pass: pass}
}

func (HTTPBin) BaseURL() string { return "https://httpbin.org" }

func (h HTTPBin) Method() endpoint.Method {
	switch h.op {
	case "post", "form":
		return endpoint.POST
	default:
		return endpoint.GET
	}
}

func (h HTTPBin) Path() string {
	switch h.op {
	case "basic-auth":
		return "/basic-auth/" + h.user + "/" + h.pass
	case "form":
		return "/post"
	default:
		return "/" + h.op
	}
}

func (h HTTPBin) Query() map[string]string { return h.args }

func (h HTTPBin) Authentication() endpoint.Auth {
	if h.op == "basic-auth" {
		return endpoint.Basic{Username: h.user, Password: h.pass}
	}
	return nil
}

func (h HTTPBin) Body() (endpoint.Body, error) {
	switch b := h.data.(type) {
	case nil:
		return endpoint.NoBody, nil
	case endpoint.Body:
		return b, nil
	default:
		return endpoint.JSON{Value: b}, nil
	}
}

// Echo is the subset of httpbin's echo response printed by this program.
type Echo struct {
	Args    map[string]string `json:"args"`
	Form    map[string]string `json:"form"`
	Headers map[string]string `json:"headers"`
	JSON    any               `json:"json"`
	URL     string            `json:"url"`
}

type AuthResult struct {
	Authenticated bool   `json:"authenticated"`
	User          string `json:"user"`
}

func newProvider(base string, log zerolog.Logger) *provider.Provider[HTTPBin] {
	var endpointFn provider.EndpointFunc[HTTPBin]
	if base != "" {
		endpointFn = func(h HTTPBin) string { return base + h.Path() }
	}
	p := provider.New[HTTPBin](provider.Chain(http.DefaultClient,
		provider.UserAgent("oneclient-httpbin"),
		provider.Logging(log),
	), endpointFn, nil)
	p.Header = http.Header{"Accept": []string{endpoint.ContentTypeJSON}}
	return p
}

func run(ctx context.Context, p *provider.Provider[HTTPBin], user, pass string) error {
	echo, err := provider.JSON[Echo](ctx, p, Get(map[string]string{"page": "1", "q": "one client"}))
	if err != nil {
		return err
	}
	fmt.Printf("GET  %s args=%v\n", echo.URL, echo.Args)

	echo, err = provider.JSON[Echo](ctx, p, Post(map[string]any{"name": "oneclient", "stars": 42}))
	if err != nil {
		return err
	}
	fmt.Printf("POST %s json=%v\n", echo.URL, echo.JSON)

	echo, err = provider.JSON[Echo](ctx, p, Form(endpoint.Field{Key: "a", Value: "1"}, endpoint.Field{Key: "b", Value: "x y"}))
	if err != nil {
		return err
	}
	fmt.Printf("FORM %s form=%v\n", echo.URL, echo.Form)

	auth, err := provider.JSON[AuthResult](ctx, p, BasicAuth(user, pass))
	if err != nil {
		return err
	}
	fmt.Println("AUTH " + auth.User + " authenticated=" + strconv.FormatBool(auth.Authenticated))
	return nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using environment variables")
	}

	app := &cli.App{
		Name:  "httpbin",
		Usage: "exercise httpbin.org through a typed provider",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "base", Usage: "override the httpbin base URL", EnvVars: []string{"HTTPBIN_URL"}},
			&cli.StringFlag{Name: "user", Value: "user", EnvVars: []string{"HTTPBIN_USER"}},
			&cli.StringFlag{Name: "password", Value: "passwd", EnvVars: []string{"HTTPBIN_PASSWORD"}},
		},
		Action: func(ctx *cli.Context) error {
			log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: `2006-01-02 15:04:05`}).
				With().Timestamp().Logger()
			p := newProvider(ctx.String("base"), log)
			return run(ctx.Context, p, ctx.String("user"), ctx.String("password"))
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
