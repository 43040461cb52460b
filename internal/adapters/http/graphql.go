package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/graphql-go/graphql"

	"github.com/samirrijal/hongnam/internal/core/domain"
	"github.com/samirrijal/hongnam/internal/core/usecases"
)

// restroomSource unwraps the value or pointer a resolver receives.
func restroomSource(src interface{}) (domain.Restroom, bool) {
	switch r := src.(type) {
	case domain.Restroom:
		return r, true
	case *domain.Restroom:
		if r != nil {
			return *r, true
		}
	}
	return domain.Restroom{}, false
}

// filterArgs are shared by the restrooms query and the setFilters mutation.
func filterArgs() graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{
		"price":         &graphql.ArgumentConfig{Type: graphql.String},
		"open_now":      &graphql.ArgumentConfig{Type: graphql.Boolean},
		"wheelchair":    &graphql.ArgumentConfig{Type: graphql.Boolean},
		"water":         &graphql.ArgumentConfig{Type: graphql.Boolean},
		"baby_changing": &graphql.ArgumentConfig{Type: graphql.Boolean},
	}
}

// filtersFromArgs builds Filters from resolver args on top of base. It
// reports whether any filter argument was given.
func filtersFromArgs(args map[string]interface{}, base domain.Filters) (domain.Filters, bool) {
	given := false
	for _, k := range []string{"price", "open_now", "wheelchair", "water", "baby_changing"} {
		if _, ok := args[k]; ok {
			given = true
		}
	}
	if !given {
		return base, false
	}
	f := domain.DefaultFilters()
	if v, ok := args["price"].(string); ok {
		f.PriceType = domain.PriceFilter(strings.ToLower(v))
	}
	f.OnlyOpenNow, _ = args["open_now"].(bool)
	f.Wheelchair, _ = args["wheelchair"].(bool)
	f.Water, _ = args["water"].(bool)
	f.BabyChanging, _ = args["baby_changing"].(bool)
	return f, true
}

// buildSchema creates the GraphQL schema wired to the store and session.
func buildSchema(deps *Dependencies) (graphql.Schema, error) {
	geoPointType := graphql.NewObject(graphql.ObjectConfig{
		Name: "GeoPoint",
		Fields: graphql.Fields{
			"lat": &graphql.Field{Type: graphql.Float},
			"lon": &graphql.Field{Type: graphql.Float},
		},
	})

	restroomType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Restroom",
		Fields: graphql.Fields{
			"id":               &graphql.Field{Type: graphql.String},
			"name":             &graphql.Field{Type: graphql.String},
			"category":         &graphql.Field{Type: graphql.String},
			"location":         &graphql.Field{Type: geoPointType},
			"price_type":       &graphql.Field{Type: graphql.String},
			"is_24h":           &graphql.Field{Type: graphql.Boolean},
			"wheelchair":       &graphql.Field{Type: graphql.Boolean},
			"water":            &graphql.Field{Type: graphql.Boolean},
			"baby_changing":    &graphql.Field{Type: graphql.Boolean},
			"last_verified_at": &graphql.Field{Type: graphql.DateTime},
			"trust_score":      &graphql.Field{Type: graphql.Int},
			"verified": &graphql.Field{
				Type: graphql.Boolean,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					r, ok := restroomSource(p.Source)
					return ok && r.Verified(), nil
				},
			},
		},
	})

	reportType := graphql.NewObject(graphql.ObjectConfig{
		Name: "ProblemReport",
		Fields: graphql.Fields{
			"restroom_id":   &graphql.Field{Type: graphql.String},
			"restroom_name": &graphql.Field{Type: graphql.String},
			"message":       &graphql.Field{Type: graphql.String},
			"reported_at":   &graphql.Field{Type: graphql.DateTime},
		},
	})

	filtersType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Filters",
		Fields: graphql.Fields{
			"only_open_now": &graphql.Field{Type: graphql.Boolean},
			"price_type":    &graphql.Field{Type: graphql.String},
			"wheelchair":    &graphql.Field{Type: graphql.Boolean},
			"water":         &graphql.Field{Type: graphql.Boolean},
			"baby_changing": &graphql.Field{Type: graphql.Boolean},
		},
	})

	regionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Region",
		Fields: graphql.Fields{
			"latitude":        &graphql.Field{Type: graphql.Float},
			"longitude":       &graphql.Field{Type: graphql.Float},
			"latitude_delta":  &graphql.Field{Type: graphql.Float},
			"longitude_delta": &graphql.Field{Type: graphql.Float},
		},
	})

	draftType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Draft",
		Fields: graphql.Fields{
			"name":           &graphql.Field{Type: graphql.String},
			"category":       &graphql.Field{Type: graphql.String},
			"price_type":     &graphql.Field{Type: graphql.String},
			"open":           &graphql.Field{Type: graphql.String},
			"photo_attached": &graphql.Field{Type: graphql.Boolean},
		},
	})

	checkInType := graphql.NewObject(graphql.ObjectConfig{
		Name: "CheckInForm",
		Fields: graphql.Fields{
			"status":      &graphql.Field{Type: graphql.String},
			"cleanliness": &graphql.Field{Type: graphql.String},
			"need_code":   &graphql.Field{Type: graphql.Boolean},
			"must_pay":    &graphql.Field{Type: graphql.Boolean},
			"must_buy":    &graphql.Field{Type: graphql.Boolean},
		},
	})

	sessionType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Session",
		Fields: graphql.Fields{
			"filters":    &graphql.Field{Type: filtersType},
			"visible":    &graphql.Field{Type: graphql.NewList(restroomType)},
			"selected":   &graphql.Field{Type: restroomType},
			"open_modal": &graphql.Field{Type: graphql.String},
			"check_in":   &graphql.Field{Type: checkInType},
			"draft":      &graphql.Field{Type: draftType},
			"region":     &graphql.Field{Type: regionType},
			"position":   &graphql.Field{Type: geoPointType},
			"revision": &graphql.Field{
				Type: graphql.Int,
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					st, _ := p.Source.(usecases.SessionState)
					return int(st.Revision), nil
				},
			},
		},
	})

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"restrooms": &graphql.Field{
				Type:        graphql.NewList(restroomType),
				Description: "Restrooms matching the given filters, or the session filters when none are given",
				Args:        filterArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					f, _ := filtersFromArgs(p.Args, deps.Session.Filters())
					if !f.PriceType.Valid() {
						return nil, domain.ErrValidation
					}
					return deps.Restrooms.Visible(p.Context, f)
				},
			},
			"restroom": &graphql.Field{
				Type:        restroomType,
				Description: "Get a restroom by ID",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					id := p.Args["id"].(string)
					return deps.Restrooms.Get(p.Context, id)
				},
			},
			"session": &graphql.Field{
				Type:        sessionType,
				Description: "Current session state",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Session.Snapshot(p.Context)
				},
			},
		},
	})

	mutationType := graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"setFilters": &graphql.Field{
				Type:        filtersType,
				Description: "Replace the session filters",
				Args:        filterArgs(),
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					f, _ := filtersFromArgs(p.Args, domain.DefaultFilters())
					if err := deps.Session.SetFilters(f); err != nil {
						return nil, err
					}
					return deps.Session.Filters(), nil
				},
			},
			"selectRestroom": &graphql.Field{
				Type:        restroomType,
				Description: "Select a restroom",
				Args: graphql.FieldConfigArgument{
					"id": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Session.Select(p.Context, p.Args["id"].(string))
				},
			},
			"checkIn": &graphql.Field{
				Type:        restroomType,
				Description: "Check in a restroom",
				Args: graphql.FieldConfigArgument{
					"id":          &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"status":      &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(domain.StatusOpen)},
					"cleanliness": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(domain.CleanGood)},
					"need_code":   &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
					"must_pay":    &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
					"must_buy":    &graphql.ArgumentConfig{Type: graphql.Boolean, DefaultValue: false},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					in := domain.CheckIn{
						Status:      domain.CheckStatus(p.Args["status"].(string)),
						Cleanliness: domain.Cleanliness(p.Args["cleanliness"].(string)),
						NeedCode:    p.Args["need_code"].(bool),
						MustPay:     p.Args["must_pay"].(bool),
						MustBuy:     p.Args["must_buy"].(bool),
					}
					if !in.Status.Valid() || !in.Cleanliness.Valid() {
						return nil, domain.ErrValidation
					}
					return deps.Restrooms.CheckIn(p.Context, p.Args["id"].(string), in)
				},
			},
			"addRestroom": &graphql.Field{
				Type:        restroomType,
				Description: "Add a restroom at a point, or at the viewport center when lat/lon are omitted",
				Args: graphql.FieldConfigArgument{
					"name":       &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"category":   &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: domain.DefaultCategory},
					"price_type": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(domain.PriceUnknown)},
					"open":       &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: string(domain.StatusUnknown)},
					"lat":        &graphql.ArgumentConfig{Type: graphql.Float},
					"lon":        &graphql.ArgumentConfig{Type: graphql.Float},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					d := domain.Draft{
						Name:      p.Args["name"].(string),
						Category:  p.Args["category"].(string),
						PriceType: domain.PriceType(p.Args["price_type"].(string)),
						Open:      domain.CheckStatus(p.Args["open"].(string)),
					}
					at := deps.Session.Region().Center()
					lat, hasLat := p.Args["lat"].(float64)
					lon, hasLon := p.Args["lon"].(float64)
					if hasLat && hasLon {
						at = domain.GeoPoint{Lat: lat, Lon: lon}
					}
					return deps.Restrooms.Add(p.Context, d, at)
				},
			},
			"reportRestroom": &graphql.Field{
				Type:        reportType,
				Description: "Flag a restroom for review",
				Args: graphql.FieldConfigArgument{
					"id":      &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"message": &graphql.ArgumentConfig{Type: graphql.String, DefaultValue: ""},
				},
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Restrooms.Report(p.Context, p.Args["id"].(string), p.Args["message"].(string))
				},
			},
			"emergency": &graphql.Field{
				Type:        restroomType,
				Description: "Select the best restroom for the session filters",
				Resolve: func(p graphql.ResolveParams) (interface{}, error) {
					return deps.Session.Emergency(p.Context)
				},
			},
		},
	})

	return graphql.NewSchema(graphql.SchemaConfig{
		Query:    queryType,
		Mutation: mutationType,
	})
}

// GraphQLHandler serves the GraphQL endpoint.
func GraphQLHandler(deps *Dependencies) fiber.Handler {
	schema, err := buildSchema(deps)
	if err != nil {
		// This would be a programming error in the schema definition
		panic("graphql schema build: " + err.Error())
	}

	type gqlRequest struct {
		Query         string                 `json:"query"`
		OperationName string                 `json:"operationName"`
		Variables     map[string]interface{} `json:"variables"`
	}

	return func(c *fiber.Ctx) error {
		var req gqlRequest
		if err := c.BodyParser(&req); err != nil {
			return errBadRequest(c, "invalid request body")
		}

		result := graphql.Do(graphql.Params{
			Schema:         schema,
			RequestString:  req.Query,
			VariableValues: req.Variables,
			OperationName:  req.OperationName,
			Context:        c.UserContext(),
		})
		if result.HasErrors() {
			LoggerFromCtx(c.UserContext()).Debug("graphql errors", "errors", result.Errors)
		}

		return c.JSON(result)
	}
}
