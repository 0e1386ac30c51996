package server

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/royalcat/rquadtree/geom"
)

func isSpace(c byte) bool {
	return c == ' ' || c == '\n' || c == '\t' || c == '\r'
}

// unmarshalRectListFast parses `[[x,y],[x,y,w,h],...]` into result.
// Two element arrays are 1x1 points. Only JSON integers are accepted.
func unmarshalRectListFast(data []byte, result *[]geom.Rect) error {
	i := 0
	n := len(data)

	*result = slices.Grow(*result, n/12) // n/12 is a heuristic

	for i < n && isSpace(data[i]) {
		i++
	}

	if i >= n || data[i] != '[' {
		return fmt.Errorf("invalid format: expected '['")
	}
	i++

	for i < n && isSpace(data[i]) {
		i++
	}
	if i < n && data[i] == ']' {
		i++
		return expectEnd(data, i)
	}

	for {
		for i < n && isSpace(data[i]) {
			i++
		}

		if i >= n || data[i] != '[' {
			return fmt.Errorf("invalid format: expected '[' for rect")
		}
		i++

		var nums [4]int
		count := 0
		for {
			for i < n && isSpace(data[i]) {
				i++
			}

			start := i
			if i < n && data[i] == '-' {
				i++
			}
			digits := i
			for i < n && data[i] >= '0' && data[i] <= '9' {
				i++
			}
			if digits == i {
				return fmt.Errorf("invalid number at offset %d", start)
			}
			if data[digits] == '0' && i-digits > 1 {
				return fmt.Errorf("invalid number at offset %d: leading zero", start)
			}
			if count == len(nums) {
				return fmt.Errorf("invalid format: too many coordinates")
			}
			num, err := strconv.Atoi(string(data[start:i]))
			if err != nil {
				return fmt.Errorf("invalid number: %w", err)
			}
			nums[count] = num
			count++

			for i < n && isSpace(data[i]) {
				i++
			}

			if i < n && data[i] == ',' {
				i++
				continue
			}
			if i < n && data[i] == ']' {
				i++
				break
			}
			return fmt.Errorf("invalid format: expected ',' or ']' after coordinate")
		}

		switch count {
		case 2:
			*result = append(*result, geom.Point(nums[0], nums[1]))
		case 4:
			*result = append(*result, geom.Rect{X: nums[0], Y: nums[1], W: nums[2], H: nums[3]})
		default:
			return fmt.Errorf("invalid format: rect must have 2 or 4 coordinates, got %d", count)
		}

		for i < n && isSpace(data[i]) {
			i++
		}

		if i < n && data[i] == ',' {
			i++
			continue
		}
		if i < n && data[i] == ']' {
			i++
			return expectEnd(data, i)
		}
		return fmt.Errorf("invalid format: expected ',' or ']' after rect")
	}
}

func expectEnd(data []byte, i int) error {
	for i < len(data) && isSpace(data[i]) {
		i++
	}
	if i != len(data) {
		return fmt.Errorf("invalid format: unexpected data after list")
	}
	return nil
}
