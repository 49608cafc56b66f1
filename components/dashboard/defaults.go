package dashboard

import "strings"

// Widget codes.
const (
	WidgetDog        = "dog"
	WidgetCat        = "cat"
	WidgetWeather    = "weather"
	WidgetCurrency   = "currency"
	WidgetMovies     = "movies"
	WidgetGitHubUser = "github_user"
	WidgetJoke       = "joke"
	WidgetPublicAPI  = "public_api"
)

const (
	defaultCity       = "Denver"
	defaultGitHubUser = "octocat"
)

// Endpoints holds the base URL of every upstream API. Query strings are
// appended by the providers.
type Endpoints struct {
	Dog        string `mapstructure:"dog" yaml:"dog"`
	Cat        string `mapstructure:"cat" yaml:"cat"`
	Geocoding  string `mapstructure:"geocoding" yaml:"geocoding"`
	Forecast   string `mapstructure:"forecast" yaml:"forecast"`
	Currency   string `mapstructure:"currency" yaml:"currency"`
	Movies     string `mapstructure:"movies" yaml:"movies"`
	Posters    string `mapstructure:"posters" yaml:"posters"`
	GitHub     string `mapstructure:"github" yaml:"github"`
	Joke       string `mapstructure:"joke" yaml:"joke"`
	PublicAPIs string `mapstructure:"public_apis" yaml:"public_apis"`
}

// DefaultEndpoints returns the production API locations.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Dog:        "https://dog.ceo/api/breeds/image/random",
		Cat:        "https://api.thecatapi.com/v1/images/search",
		Geocoding:  "https://geocoding-api.open-meteo.com/v1/search",
		Forecast:   "https://api.open-meteo.com/v1/forecast",
		Currency:   "https://api.exchangerate.host/latest",
		Movies:     "https://api.themoviedb.org/3/trending/movie/day",
		Posters:    "https://image.tmdb.org/t/p/w200",
		GitHub:     "https://api.github.com/users",
		Joke:       "https://v2.jokeapi.dev/joke/Any",
		PublicAPIs: "https://api.publicapis.org/entries",
	}
}

// WithDefaults fills blank endpoints with the production locations.
func (e Endpoints) WithDefaults() Endpoints {
	def := DefaultEndpoints()
	fill := func(dst *string, fallback string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = fallback
		}
	}
	fill(&e.Dog, def.Dog)
	fill(&e.Cat, def.Cat)
	fill(&e.Geocoding, def.Geocoding)
	fill(&e.Forecast, def.Forecast)
	fill(&e.Currency, def.Currency)
	fill(&e.Movies, def.Movies)
	fill(&e.Posters, def.Posters)
	fill(&e.GitHub, def.GitHub)
	fill(&e.Joke, def.Joke)
	fill(&e.PublicAPIs, def.PublicAPIs)
	return e
}

// Override returns e with every non-blank endpoint of o applied on top.
func (e Endpoints) Override(o Endpoints) Endpoints {
	set := func(dst *string, value string) {
		if strings.TrimSpace(value) != "" {
			*dst = value
		}
	}
	set(&e.Dog, o.Dog)
	set(&e.Cat, o.Cat)
	set(&e.Geocoding, o.Geocoding)
	set(&e.Forecast, o.Forecast)
	set(&e.Currency, o.Currency)
	set(&e.Movies, o.Movies)
	set(&e.Posters, o.Posters)
	set(&e.GitHub, o.GitHub)
	set(&e.Joke, o.Joke)
	set(&e.PublicAPIs, o.PublicAPIs)
	return e
}

var defaultWidgetDefinitions = []WidgetDefinition{
	{Code: WidgetDog, Name: "Random Dog", Description: "A random dog picture from dog.ceo", Category: "images"},
	{Code: WidgetCat, Name: "Random Cat", Description: "A random cat picture from TheCatAPI", Category: "images"},
	{
		Code:         WidgetWeather,
		Name:         "Weather",
		Description:  "Current conditions for a city via Open-Meteo",
		Category:     "data",
		DefaultInput: defaultCity,
		InputField:   "weather-city",
		Schema:       map[string]any{"type": "string", "minLength": 1, "maxLength": 120},
	},
	{Code: WidgetCurrency, Name: "USD to EUR", Description: "Latest USD to EUR exchange rate", Category: "data"},
	{
		Code:        WidgetMovies,
		Name:        "Trending Movies",
		Description: "Today's trending movies from TMDB (requires an API key)",
		Category:    "media",
		InputField:  "tmdb-key",
	},
	{
		Code:         WidgetGitHubUser,
		Name:         "GitHub User",
		Description:  "Public profile of a GitHub account",
		Category:     "social",
		DefaultInput: defaultGitHubUser,
		InputField:   "gh-user",
		Schema:       map[string]any{"type": "string", "minLength": 1, "maxLength": 100},
	},
	{Code: WidgetJoke, Name: "Joke", Description: "A safe-mode single-line joke", Category: "fun"},
	{Code: WidgetPublicAPI, Name: "Public API", Description: "A random entry from the public APIs directory", Category: "fun"},
}

// DefaultWidgetDefinitions returns the built-in widget definitions in display order.
func DefaultWidgetDefinitions() []WidgetDefinition {
	out := make([]WidgetDefinition, len(defaultWidgetDefinitions))
	for i, def := range defaultWidgetDefinitions {
		out[i] = cloneDefinition(def)
	}
	return out
}

// ProviderDeps are the collaborators shared by the built-in providers.
type ProviderDeps struct {
	Client      JSONGetter
	Endpoints   Endpoints
	Credentials CredentialStore
	// Pick selects an index in [0, n); nil uses a uniform random pick.
	Pick func(n int) int
}

// DefaultProviders builds the built-in provider for every default widget.
func DefaultProviders(deps ProviderDeps) map[string]Provider {
	endpoints := deps.Endpoints.WithDefaults()
	return map[string]Provider{
		WidgetDog:        NewDogProvider(deps.Client, endpoints.Dog),
		WidgetCat:        NewCatProvider(deps.Client, endpoints.Cat),
		WidgetWeather:    NewWeatherProvider(deps.Client, endpoints.Geocoding, endpoints.Forecast),
		WidgetCurrency:   NewCurrencyProvider(deps.Client, endpoints.Currency),
		WidgetMovies:     NewMoviesProvider(deps.Client, endpoints.Movies, endpoints.Posters, deps.Credentials),
		WidgetGitHubUser: NewGitHubUserProvider(deps.Client, endpoints.GitHub),
		WidgetJoke:       NewJokeProvider(deps.Client, endpoints.Joke),
		WidgetPublicAPI:  NewPublicAPIProvider(deps.Client, endpoints.PublicAPIs, deps.Pick),
	}
}

func cloneDefinition(def WidgetDefinition) WidgetDefinition {
	if len(def.Schema) > 0 {
		schema := make(map[string]any, len(def.Schema))
		for k, v := range def.Schema {
			schema[k] = v
		}
		def.Schema = schema
	}
	return def
}
