package boolcompare

func f(ok, other bool, n int) bool {
	if ok == true { // want "omit comparison with boolean literal"
		return true
	}
	if false != ok { // want "omit comparison with boolean literal"
		return false
	}
	if ok != true { // want "omit comparison with boolean literal"
		return ok == other
	}
	return n > 3 == false // want "omit comparison with boolean literal"
}
