package records

import "github.com/mamadbah2/pigfarm/internal/query"

func text[T any](name string, value func(T) any) query.Field[T] {
	return query.Field[T]{Name: name, Kind: query.String, Searchable: true, Value: value}
}

func number[T any](name string, value func(T) any) query.Field[T] {
	return query.Field[T]{Name: name, Kind: query.Number, Value: value}
}

func date[T any](name string, value func(T) any) query.Field[T] {
	return query.Field[T]{Name: name, Kind: query.Date, Searchable: true, Value: value}
}
