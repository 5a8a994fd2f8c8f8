// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.


package qsort


// Sort an array of float32 in ascending order.
// Array must not contain IEEE NaN
func QSortFloat32(a []float32) {
    if len(a)>1 {
        index := QPartitionFloat32(a)
        QSortFloat32(a[:index+1])
        QSortFloat32(a[index+1:])
    }
}


// Partitions an array of float32 with the middle pivot element, and returns the pivot index.
// Values less than the pivot are moved left of the pivot, those greater are moved right.
// Array must not contain IEEE NaN
func QPartitionFloat32(a []float32) int {
    left, right:=0, len(a)-1
    mid   := (left+right)>>1
    pivot := a[mid]
    l := left -1
    r := right+1
    for {
        for {
            l++
            if a[l]>=pivot { break }
        }
        for {
            r--
            if a[r]<=pivot { break }
        }
        if l >= r { return r }
        a[l], a[r] = a[r], a[l]
    }
}


// Select first quartile of an array of float32. Partially reorders the array.
// Array must not contain IEEE NaN
func QSelectFirstQuartileFloat32(a []float32) float32 {
    return QSelectFloat32(a, (len(a)>>2)+1)
}


// Select median of an array of float32, averaging the two middle elements
// for arrays of even length. Partially reorders the array.
// Array must not contain IEEE NaN
func QSelectMedianFloat32(a []float32) float32 {
    n:=len(a)
    upper:=QSelectFloat32(a, (n>>1)+1)
    if (n&1)!=0 { return upper }

    // QSelect leaves the lower half left of the selected element
    lower:=a[0]
    for _, v:=range a[1:n>>1] {
        if v>lower { lower=v }
    }
    return 0.5*(lower+upper)
}


// Select kth lowest element from an array of float32. Partially reorders the array.
// Array must not contain IEEE NaN
func QSelectFloat32(a []float32, k int) float32 {
    left, right:=0, len(a)-1
    for left<right {
        // partition
        mid:=(left+right)>>1
        pivot := a[mid]
        l, r  := left-1, right+1
        for {
            for {
                l++
                if a[l]>=pivot { break }
            }
            for {
                r--
                if a[r]<=pivot { break }
            }
            if l >= r { break } // index in r
            a[l], a[r] = a[r], a[l]
        }
        index:=r

        offset:=index-left+1
        if k<=offset {
            right=index
        } else {
            left=index+1
            k=k-offset
        }
    }
    return a[left]
}


// Computes the sort permutation of a float32 array: perm[k] gives the position
// in a of the kth smallest element. Ties keep their original relative order,
// so the permutation is stable and deterministic. The array itself is not modified.
// Array must not contain IEEE NaN
func QSortPermFloat32(a []float32) (perm []int32) {
    perm=make([]int32, len(a))
    for i:=range perm {
        perm[i]=int32(i)
    }
    qSortPermFloat32(a, perm)
    return perm
}


func qSortPermFloat32(a []float32, perm []int32) {
    if len(perm)>1 {
        index := qPartitionPermFloat32(a, perm)
        qSortPermFloat32(a, perm[:index+1])
        qSortPermFloat32(a, perm[index+1:])
    }
}


// Partitions a permutation of float32 indices with the middle pivot element, and
// returns the pivot position. Comparisons order by value first, then by original
// index to break ties stably.
// Array must not contain IEEE NaN
func qPartitionPermFloat32(a []float32, perm []int32) int {
    left, right:=0, len(perm)-1
    mid   := (left+right)>>1
    pivot := perm[mid]
    l := left -1
    r := right+1
    for {
        for {
            l++
            if !permLess(a, perm[l], pivot) { break }
        }
        for {
            r--
            if !permLess(a, pivot, perm[r]) { break }
        }
        if l >= r { return r }
        perm[l], perm[r] = perm[r], perm[l]
    }
}


func permLess(a []float32, i, j int32) bool {
    if a[i]!=a[j] { return a[i]<a[j] }
    return i<j
}
