package httpapi

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/anshulag21/eaglehurst-platform-sub001/internal/domain"
)

func pageParams(r *http.Request) (page, perPage int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	perPage, _ = strconv.Atoi(q.Get("per_page"))
	return page, perPage
}

func boolParam(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

func listingFilter(r *http.Request) domain.ListingFilter {
	q := r.URL.Query()
	minPrice, _ := strconv.ParseInt(q.Get("min_price"), 10, 64)
	maxPrice, _ := strconv.ParseInt(q.Get("max_price"), 10, 64)
	page, perPage := pageParams(r)

	return domain.ListingFilter{
		Status:       domain.ListingStatus(q.Get("status")),
		PracticeType: q.Get("practice_type"),
		Location:     q.Get("location"),
		Query:        q.Get("q"),
		MinPrice:     minPrice,
		MaxPrice:     maxPrice,
		SortBy:       q.Get("sort_by"),
		SortOrder:    q.Get("sort_order"),
		Page:         page,
		PerPage:      perPage,
	}
}

// viewerGeo pulls the caller address and the geo headers populated by
// the edge proxy.
func viewerGeo(r *http.Request) domain.ViewerGeo {
	ip := r.Header.Get("X-Forwarded-For")
	if ip != "" {
		// First hop is the client.
		if i := strings.IndexByte(ip, ','); i >= 0 {
			ip = ip[:i]
		}
		ip = strings.TrimSpace(ip)
	} else if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ip = host
	} else {
		ip = r.RemoteAddr
	}

	country := r.Header.Get("X-Geo-Country")
	if country == "" {
		country = r.Header.Get("CF-IPCountry")
	}

	return domain.ViewerGeo{
		IP:      ip,
		Country: country,
		City:    r.Header.Get("X-Geo-City"),
	}
}
