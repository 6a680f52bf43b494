package allowed

type Logger struct {
	level int
}

var Log = &Logger{}

func Level() int {
	return Log.level
}
