package deprecated_test

import (
	"fmt"
	"testing"

	"github.com/kodeshop/parquet/deprecated"
)

func TestInt96Less(t *testing.T) {
	tests := []struct {
		i    deprecated.Int96
		j    deprecated.Int96
		less bool
	}{
		{
			i:    deprecated.Int96{},
			j:    deprecated.Int96{},
			less: false,
		},

		{
			i:    deprecated.Int96{0: 1},
			j:    deprecated.Int96{0: 2},
			less: true,
		},

		{
			i:    deprecated.Int96{0: 1},
			j:    deprecated.Int96{1: 1},
			less: true,
		},

		{
			i:    deprecated.Int96{0: 1},
			j:    deprecated.Int96{2: 1},
			less: true,
		},

		{
			i:    deprecated.Int96{0: 0xFFFFFFFF, 1: 0xFFFFFFFF, 2: 0xFFFFFFFF}, // -1
			j:    deprecated.Int96{},                                           // 0
			less: true,
		},

		{
			i:    deprecated.Int96{},                                           // 0
			j:    deprecated.Int96{0: 0xFFFFFFFF, 1: 0xFFFFFFFF, 2: 0xFFFFFFFF}, // -1
			less: false,
		},

		{
			i:    deprecated.Int96{0: 0xFFFFFFFF, 1: 0xFFFFFFFF, 2: 0xFFFFFFFF}, // -1
			j:    deprecated.Int96{0: 0xFFFFFFFF, 1: 0xFFFFFFFF, 2: 0xFFFFFFFF}, // -1
			less: false,
		},

		{
			i:    deprecated.Int96{0: 0xFFFFFFFF, 1: 0xFFFFFFFF, 2: 0xFFFFFFFF}, // -1
			j:    deprecated.Int96{0: 0xFFFFFFFE, 1: 0xFFFFFFFF, 2: 0xFFFFFFFF}, // -2
			less: false,
		},

		{
			i:    deprecated.Int96{0: 0xFFFFFFFE, 1: 0xFFFFFFFF, 2: 0xFFFFFFFF}, // -2
			j:    deprecated.Int96{0: 0xFFFFFFFF, 1: 0xFFFFFFFF, 2: 0xFFFFFFFF}, // -1
			less: true,
		},
	}

	for _, test := range tests {
		scenario := ""
		if test.less {
			scenario = fmt.Sprintf("%s<%s", test.i, test.j)
		} else {
			scenario = fmt.Sprintf("%s>=%s", test.i, test.j)
		}
		t.Run(scenario, func(t *testing.T) {
			if test.i.Less(test.j) != test.less {
				t.Error("FAIL")
			}
			if test.less {
				if test.j.Less(test.i) {
					t.Error("FAIL (inverse)")
				}
			}
		})
	}
}

func TestInt96Int64RoundTrip(t *testing.T) {
	for _, v := range []int64{0, 1, -1, 1 << 40, -(1 << 40), 1<<53 - 1, -(1<<53 - 1)} {
		i := deprecated.Int96FromInt64(v)
		if got := i.Int64(); got != v {
			t.Errorf("Int96FromInt64(%d).Int64() = %d", v, got)
		}
	}
}
