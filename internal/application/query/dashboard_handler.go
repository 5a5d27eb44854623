package query

import (
	"context"
	"time"

	"tourism-marketplace/internal/domain/aggregate"
	"tourism-marketplace/internal/domain/repository"
	"tourism-marketplace/pkg/boundedquery"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Query groups in the order they are issued
const (
	GroupUsers            = "users"
	GroupServiceProviders = "serviceProviders"
	GroupListings         = "listings"
	GroupPendingListings  = "pendingListings"
	GroupBookings         = "bookings"
	GroupContactForms     = "contactForms"
	GroupBlogs            = "blogs"
	GroupNews             = "news"
	GroupBundles          = "bundles"
	GroupOffers           = "offers"
	GroupAnalytics        = "analytics"
)

const (
	recentUsersWindow   = 7 * 24 * time.Hour
	recentContactWindow = 7 * 24 * time.Hour
	recentActivityDays  = 30
)

type AdminDashboardHandler struct {
	repo             repository.StatsRepository
	executor         *boundedquery.Executor
	policy           boundedquery.Policy
	systemicGroup    string
	groupConcurrency int
	logger           *zap.Logger
	now              func() time.Time
}

// DashboardOption configures an AdminDashboardHandler
type DashboardOption func(*AdminDashboardHandler)

// WithPolicy sets the retry policy applied to every statistic query
func WithPolicy(policy boundedquery.Policy) DashboardOption {
	return func(h *AdminDashboardHandler) {
		h.policy = policy.Normalize()
	}
}

// WithSystemicGroup names the group whose complete failure is reported as
// DatastoreUnavailable. An empty name disables the check.
func WithSystemicGroup(group string) DashboardOption {
	return func(h *AdminDashboardHandler) {
		h.systemicGroup = group
	}
}

// WithGroupConcurrency caps how many queries of one group are in flight. Zero means no cap.
func WithGroupConcurrency(n int) DashboardOption {
	return func(h *AdminDashboardHandler) {
		if n >= 0 {
			h.groupConcurrency = n
		}
	}
}

func WithDashboardLogger(logger *zap.Logger) DashboardOption {
	return func(h *AdminDashboardHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

func WithClock(now func() time.Time) DashboardOption {
	return func(h *AdminDashboardHandler) {
		if now != nil {
			h.now = now
		}
	}
}

func NewAdminDashboardHandler(repo repository.StatsRepository, executor *boundedquery.Executor, opts ...DashboardOption) *AdminDashboardHandler {
	h := &AdminDashboardHandler{
		repo:          repo,
		executor:      executor,
		policy:        boundedquery.DefaultPolicy(),
		systemicGroup: GroupUsers,
		logger:        zap.NewNop(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.executor == nil {
		h.executor = boundedquery.NewExecutor(boundedquery.WithLogger(h.logger))
	}
	return h
}

// Handle builds the admin statistics report. Failed statistics fall back to
// their defaults; an error is returned only when the systemic group fails as
// a whole or ctx ends first.
func (h *AdminDashboardHandler) Handle(ctx context.Context, q GetAdminDashboard) (*AggregateReport, error) {
	if q.Now.IsZero() {
		q.Now = h.now()
	}
	start := time.Now()

	b := &dashboardBuild{}
	groups := h.plan(q, b)

	failed := 0
	for _, g := range groups {
		if err := ctx.Err(); err != nil {
			return nil, h.cancelled(g.name, err)
		}

		failures := h.runGroup(ctx, g)

		if err := ctx.Err(); err != nil {
			return nil, h.cancelled(g.name, err)
		}

		var groupErr *multierror.Error
		n := 0
		for _, f := range failures {
			if f == nil {
				continue
			}
			n++
			groupErr = multierror.Append(groupErr, f)
			h.logger.Warn("statistic defaulted after terminal failure",
				zap.String("group", g.name),
				zap.String("query", f.Query),
				zap.Int("attempts", f.Attempts),
				zap.String("last_failure", f.LastKind.String()),
				zap.Error(f.Err))
		}

		if n > 0 && n == len(g.queries) && g.name == h.systemicGroup {
			h.logger.Error("every query of the systemic group failed, treating datastore as unavailable",
				zap.String("group", g.name),
				zap.Error(groupErr))
			return nil, &AggregationError{
				Kind:  DatastoreUnavailable,
				Group: g.name,
				Err:   groupErr.ErrorOrNil(),
			}
		}
		failed += n
	}

	report := b.finish(q.Now)
	h.logger.Info("dashboard statistics built",
		zap.Int("groups", len(groups)),
		zap.Int("defaulted", failed),
		zap.Duration("elapsed", time.Since(start)))
	return report, nil
}

// GroupNames returns the query groups in issue order
func (h *AdminDashboardHandler) GroupNames() []string {
	groups := h.plan(GetAdminDashboard{Now: h.now()}, &dashboardBuild{})
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.name)
	}
	return names
}

// WorstCaseLatency is the longest Handle can take when every query hangs:
// groups run one after another, the queries of a group concurrently.
func (h *AdminDashboardHandler) WorstCaseLatency() time.Duration {
	return time.Duration(len(h.GroupNames())) * h.policy.WorstCase()
}

func (h *AdminDashboardHandler) cancelled(group string, err error) error {
	h.logger.Info("dashboard aggregation abandoned", zap.String("group", group), zap.Error(err))
	return &AggregationError{Kind: Cancelled, Group: group, Err: err}
}

// runGroup issues every query of g concurrently and waits for all of them.
// A failing query never stops its siblings.
func (h *AdminDashboardHandler) runGroup(ctx context.Context, g statGroup) []*boundedquery.QueryError {
	failures := make([]*boundedquery.QueryError, len(g.queries))

	var eg errgroup.Group
	if h.groupConcurrency > 0 {
		eg.SetLimit(h.groupConcurrency)
	}
	for i, sq := range g.queries {
		eg.Go(func() error {
			failures[i] = sq.run(ctx)
			return nil
		})
	}
	_ = eg.Wait()

	return failures
}

type statQuery struct {
	name string
	run  func(ctx context.Context) *boundedquery.QueryError
}

type statGroup struct {
	name    string
	queries []statQuery
}

// bind runs fn through the executor and stores the value in dst on success.
// dst keeps its default otherwise.
func bind[T any](h *AdminDashboardHandler, name string, dst *T, fn boundedquery.Func[T]) statQuery {
	return statQuery{
		name: name,
		run: func(ctx context.Context) *boundedquery.QueryError {
			out := boundedquery.Run(ctx, h.executor, boundedquery.Spec[T]{
				Name:    name,
				Execute: fn,
				Policy:  h.policy,
			})
			if out.OK() {
				*dst = out.Value
			}
			return out.Err
		},
	}
}

func (h *AdminDashboardHandler) count(source repository.Source, conditions ...repository.Condition) boundedquery.Func[int64] {
	criteria := repository.Where(conditions...)
	return func(ctx context.Context) (int64, error) {
		return h.repo.Count(ctx, source, criteria)
	}
}

func (h *AdminDashboardHandler) countBy(source repository.Source, field string, conditions ...repository.Condition) boundedquery.Func[[]repository.GroupCount] {
	criteria := repository.Where(conditions...)
	return func(ctx context.Context) ([]repository.GroupCount, error) {
		return h.repo.CountBy(ctx, source, field, criteria)
	}
}

func (h *AdminDashboardHandler) sum(source repository.Source, field string, conditions ...repository.Condition) boundedquery.Func[float64] {
	criteria := repository.Where(conditions...)
	return func(ctx context.Context) (float64, error) {
		return h.repo.Sum(ctx, source, field, criteria)
	}
}

// dashboardBuild is the destination of every query. Each query owns exactly
// one field, so concurrent queries never share state.
type dashboardBuild struct {
	report    AggregateReport
	pageViews []repository.GroupCount
}

func (b *dashboardBuild) finish(now time.Time) *AggregateReport {
	r := b.report

	r.Users.ByRole = orEmpty(r.Users.ByRole)
	r.Users.ByStatus = orEmpty(r.Users.ByStatus)
	r.Users.ServiceProviders.computeTotal()
	r.Users.Listings.computeTotal()
	r.Users.PendingListings.computeTotal()
	r.Bookings.ByStatus = orEmpty(r.Bookings.ByStatus)
	r.ContactForms.ByStatus = orEmpty(r.ContactForms.ByStatus)
	r.Analytics.MostVisitedPages = MostVisitedPages(b.pageViews, r.Analytics.TotalViews, MostVisitedPagesLimit)
	r.GeneratedAt = now.UTC()

	return &r
}

func (h *AdminDashboardHandler) plan(q GetAdminDashboard, b *dashboardBuild) []statGroup {
	r := &b.report
	lastWeek := q.Now.Add(-recentUsersWindow)
	lastMonth := q.Now.AddDate(0, 0, -recentActivityDays)

	return []statGroup{
		{name: GroupUsers, queries: []statQuery{
			bind(h, "totalUsers", &r.Users.Total, h.count(repository.SourceUsers)),
			bind(h, "roleBreakdown", &r.Users.ByRole, h.countBy(repository.SourceUsers, repository.FieldRole)),
			bind(h, "activeCustomers", &r.Users.ActiveCustomers, h.count(repository.SourceUsers,
				repository.Eq(repository.FieldRole, string(aggregate.RoleCustomer)),
				repository.Eq(repository.FieldStatus, string(aggregate.UserStatusActive)))),
			bind(h, "statusBreakdown", &r.Users.ByStatus, h.countBy(repository.SourceUsers, repository.FieldStatus)),
			bind(h, "recentUsers", &r.Users.Recent, h.count(repository.SourceUsers, repository.Since(lastWeek))),
		}},
		{name: GroupServiceProviders, queries: h.providerQueries(&r.Users.ServiceProviders)},
		{name: GroupListings, queries: h.listingQueries("total", &r.Users.Listings)},
		{name: GroupPendingListings, queries: h.listingQueries("pending", &r.Users.PendingListings,
			repository.Eq(repository.FieldIsVerified, false))},
		{name: GroupBookings, queries: []statQuery{
			bind(h, "totalBookings", &r.Bookings.Total, h.count(repository.SourceBookings)),
			bind(h, "bookingStatusBreakdown", &r.Bookings.ByStatus, h.countBy(repository.SourceBookings, repository.FieldStatus)),
			bind(h, "recentBookings", &r.Bookings.Recent, h.count(repository.SourceBookings, repository.Since(lastMonth))),
			bind(h, "bookingRevenue", &r.Bookings.Revenue, h.sum(repository.SourceBookings, repository.FieldTotalPrice,
				repository.In(repository.FieldStatus, revenueStatuses()))),
		}},
		{name: GroupContactForms, queries: []statQuery{
			bind(h, "totalContactForms", &r.ContactForms.Total, h.count(repository.SourceContactForms)),
			bind(h, "contactFormStatusBreakdown", &r.ContactForms.ByStatus, h.countBy(repository.SourceContactForms, repository.FieldStatus)),
			bind(h, "newContactForms", &r.ContactForms.New, h.count(repository.SourceContactForms,
				repository.Eq(repository.FieldStatus, string(aggregate.ContactFormStatusNew)))),
			bind(h, "recentContactForms", &r.ContactForms.Recent, h.count(repository.SourceContactForms,
				repository.Since(q.Now.Add(-recentContactWindow)))),
		}},
		{name: GroupBlogs, queries: h.contentQueries("Blogs", repository.SourceBlogs, &r.Content.Blogs, lastMonth)},
		{name: GroupNews, queries: h.contentQueries("News", repository.SourceNews, &r.Content.News, lastMonth)},
		{name: GroupBundles, queries: []statQuery{
			bind(h, "totalBundles", &r.Bundles.Total, h.count(repository.SourceBundles)),
			bind(h, "activeBundles", &r.Bundles.Active, h.count(repository.SourceBundles,
				repository.Eq(repository.FieldIsActive, true))),
		}},
		{name: GroupOffers, queries: []statQuery{
			bind(h, "totalOffers", &r.Offers.Total, h.count(repository.SourceOffers)),
			bind(h, "activeOffers", &r.Offers.Active, h.count(repository.SourceOffers,
				repository.Eq(repository.FieldIsActive, true),
				repository.Gte(repository.FieldValidUntil, q.Now))),
		}},
		{name: GroupAnalytics, queries: []statQuery{
			bind(h, "totalPageViews", &r.Analytics.TotalViews, h.count(repository.SourcePageViews, repository.Since(lastMonth))),
			bind(h, "pageViewBreakdown", &b.pageViews, h.countBy(repository.SourcePageViews, repository.FieldPage, repository.Since(lastMonth))),
		}},
	}
}

func (h *AdminDashboardHandler) providerQueries(dst *ServiceProviderBreakdown) []statQuery {
	roles := aggregate.ServiceProviderRoles()
	queries := make([]statQuery, 0, len(roles))
	for _, role := range roles {
		name, counter := dst.counter(role)
		if counter == nil {
			continue
		}
		queries = append(queries, bind(h, name, counter, h.count(repository.SourceUsers,
			repository.Eq(repository.FieldRole, string(role)))))
	}
	return queries
}

func (h *AdminDashboardHandler) listingQueries(prefix string, dst *ListingBreakdown, conditions ...repository.Condition) []statQuery {
	kinds := aggregate.ListingKinds()
	queries := make([]statQuery, 0, len(kinds))
	for _, kind := range kinds {
		name, counter := dst.counter(kind)
		if counter == nil {
			continue
		}
		queries = append(queries, bind(h, prefix+name, counter, h.count(repository.ListingSource(kind), conditions...)))
	}
	return queries
}

func (h *AdminDashboardHandler) contentQueries(suffix string, source repository.Source, dst *ContentItemStats, since time.Time) []statQuery {
	return []statQuery{
		bind(h, "total"+suffix, &dst.Total, h.count(source)),
		bind(h, "published"+suffix, &dst.Published, h.count(source,
			repository.Eq(repository.FieldStatus, string(aggregate.ContentStatusPublished)))),
		bind(h, "draft"+suffix, &dst.Drafts, h.count(source,
			repository.Eq(repository.FieldStatus, string(aggregate.ContentStatusDraft)))),
		bind(h, "recent"+suffix, &dst.Recent, h.count(source, repository.Since(since))),
	}
}

func revenueStatuses() []string {
	statuses := aggregate.RevenueBookingStatuses()
	values := make([]string, 0, len(statuses))
	for _, s := range statuses {
		values = append(values, string(s))
	}
	return values
}
