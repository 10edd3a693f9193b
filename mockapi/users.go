package mockapi

import (
	"cmp"
	"net/http"
	"sort"
	"strings"

	"axiapac.com/timetrack/model"
	"axiapac.com/timetrack/utils"
	"github.com/gin-gonic/gin"
)

type userQuery struct {
	Skip      int    `form:"skip" binding:"min=0"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Search    string `form:"search"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc ASC DESC"`
}

func (s *Server) listUsers(c *gin.Context) {
	var q userQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		detail(c, http.StatusUnprocessableEntity, bindingErrors(err))
		return
	}
	if q.Limit == 0 {
		q.Limit = 10
	}

	s.mu.Lock()
	users := make([]model.UserSummary, 0, len(s.accounts))
	for _, a := range s.accounts {
		users = append(users, a.UserSummary)
	}
	s.mu.Unlock()

	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		users = utils.Filter(users, func(u model.UserSummary) bool {
			return strings.Contains(strings.ToLower(u.Name), needle) || strings.Contains(strings.ToLower(u.Email), needle)
		})
	}

	compare := func(a, b model.UserSummary) int { return strings.Compare(a.Name, b.Name) }
	switch q.SortBy {
	case "id", "created_at":
		compare = func(a, b model.UserSummary) int { return cmp.Compare(a.ID, b.ID) }
	case "email":
		compare = func(a, b model.UserSummary) int { return strings.Compare(a.Email, b.Email) }
	}
	desc := !strings.EqualFold(q.SortOrder, "asc")
	less := func(a, b model.UserSummary) bool {
		if desc {
			return compare(a, b) > 0
		}
		return compare(a, b) < 0
	}
	sort.SliceStable(users, func(i, j int) bool { return less(users[i], users[j]) })

	total := len(users)
	start := min(q.Skip, total)
	end := min(start+q.Limit, total)

	success(c, "Users fetched successfully", gin.H{
		"total": total,
		"skip":  q.Skip,
		"limit": q.Limit,
		"users": users[start:end],
	})
}
