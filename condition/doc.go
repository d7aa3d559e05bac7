/*
Package condition builds boolean expressions over attributes and compiles them
into the store's expression language with name and value placeholders.

	cond := condition.Where("status").Eq("active").
	    And().Where("age").Ge(18).
	    And().Group(func(c *condition.Condition) {
	        c.Where("role").Eq("admin").Or().Where("role").Eq("owner")
	    })

	compiled, next, err := cond.Compile(0, nil)
	// compiled.Expression:
	//   #a0 = :v1 AND #a2 >= :v3 AND (#a4 = :v5 OR #a4 = :v6)

The builder is a small state machine: a comparator is only legal after Where
has selected an attribute. Illegal calls are recorded and returned by Compile
as *errors.BuilderStateError. Two comparators with no combinator between them
are joined with AND. Not negates the next comparator, inverting it where a
direct inverse exists.

The counter returned by Compile continues the placeholder sequence so a
second expression in the same request, such as an update, cannot collide.
*/
package condition
