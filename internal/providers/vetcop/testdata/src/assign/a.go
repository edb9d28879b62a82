package assign

func f(x int) int {
	x = x // want "self-assignment of x"
	return x
}
