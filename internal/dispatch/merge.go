// merge.go implements the OR/AND result combinators 
// describes: an OrType dispatch surfaces diagnostics from both sides and
// returns their least upper bound; an AndType dispatch (after the
// errors-suppressed probe in dispatch.go) returns their greatest lower
// bound and keeps both legs as Main/Secondary for callers that need to
// inspect either resolved method.
package dispatch

import "github.com/veridian-lang/veri/internal/unify"

func mergeOr(left, right DispatchResult) DispatchResult {
	secondary := right.Main
	left.Main.Errors.Merge(right.Main.Errors)
	return DispatchResult{
		ReturnType:    unify.Any(left.ReturnType, right.ReturnType),
		Main:          left.Main,
		Secondary:     &secondary,
		SecondaryKind: SecondaryOr,
	}
}

func mergeAnd(left, right DispatchResult) DispatchResult {
	secondary := right.Main
	left.Main.Errors.Merge(right.Main.Errors)
	return DispatchResult{
		ReturnType:    unify.All(left.ReturnType, right.ReturnType),
		Main:          left.Main,
		Secondary:     &secondary,
		SecondaryKind: SecondaryAnd,
	}
}
