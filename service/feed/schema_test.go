package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLocate_RAPrecedence RA列优先匹配interviewer，其次ra
func TestLocate_RAPrecedence(t *testing.T) {
	loc := NewColumnLocator([]string{"ra_name", "interviewer", "status"})
	col, err := loc.Locate(RoleRA)
	require.NoError(t, err)
	assert.Equal(t, "interviewer", col)

	loc = NewColumnLocator([]string{"hh_id", "ra_name"})
	col, err = loc.Locate(RoleRA)
	require.NoError(t, err)
	assert.Equal(t, "ra_name", col)

	loc = NewColumnLocator([]string{"hh_id", "surveyra"})
	col, err = loc.Locate(RoleRA)
	require.NoError(t, err)
	assert.Equal(t, "surveyra", col)
}

// TestLocate_NotFound 找不到列时返回ErrColumnNotFound
func TestLocate_NotFound(t *testing.T) {
	loc := NewColumnLocator([]string{"hh_id", "status"})
	_, err := loc.Locate(RoleRA)
	assert.ErrorIs(t, err, ErrColumnNotFound)
	assert.False(t, loc.Has(RoleRA))

	_, err = loc.Locate(Role("unknown"))
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

// TestLocate_OtherRoles 其他角色的匹配规则
func TestLocate_OtherRoles(t *testing.T) {
	loc := NewColumnLocator([]string{
		"ra_name", "hh_id", "household_code", "interview_status", "status",
		"created_date", "interview_date", "issue_description", "gap_days",
		"total_cashflows", "total_answers",
	})

	expect := map[Role]string{
		RoleHousehold:     "household_code",
		RoleStatus:        "status",
		RoleInterviewDate: "interview_date",
		RoleIssue:         "issue_description",
		RoleGapDays:       "gap_days",
		RoleCashflows:     "total_cashflows",
		RoleAnswers:       "total_answers",
	}
	for role, want := range expect {
		got, err := loc.Locate(role)
		require.NoError(t, err, role)
		assert.Equal(t, want, got, role)
	}

	loc = NewColumnLocator([]string{"hh_id", "visit_date", "cfs"})
	got, err := loc.Locate(RoleHousehold)
	require.NoError(t, err)
	assert.Equal(t, "hh_id", got)
	got, err = loc.Locate(RoleInterviewDate)
	require.NoError(t, err)
	assert.Equal(t, "visit_date", got)
	got, err = loc.Locate(RoleCashflows)
	require.NoError(t, err)
	assert.Equal(t, "cfs", got)
}

// TestCells 单元格转换
func TestCells(t *testing.T) {
	assert.Equal(t, "", Text(nil))
	assert.Equal(t, "amina", Text(" amina "))
	assert.Equal(t, "12", Text(12))
	assert.Equal(t, "abc", Text([]byte("abc")))

	v, ok := Number("15")
	assert.True(t, ok)
	assert.Equal(t, 15.0, v)

	_, ok = Number(nil)
	assert.False(t, ok)
	_, ok = Number("  ")
	assert.False(t, ok)
	_, ok = Number("n/a")
	assert.False(t, ok)

	v, ok = Number(int64(3))
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)
}
